package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	contractx "github.com/hanumantraders/warehouse-agent/agent/contract"
	"github.com/hanumantraders/warehouse-agent/agent/llm"
	"github.com/hanumantraders/warehouse-agent/agent/orchestrator"
	promptx "github.com/hanumantraders/warehouse-agent/agent/prompt"
	storex "github.com/hanumantraders/warehouse-agent/agent/store"
	toolx "github.com/hanumantraders/warehouse-agent/agent/tool"
	"github.com/hanumantraders/warehouse-agent/agent/tools"
	"github.com/hanumantraders/warehouse-agent/api"
	configx "github.com/hanumantraders/warehouse-agent/pkg/config"
	_ "github.com/hanumantraders/warehouse-agent/pkg/logger/autoload"
	mailerx "github.com/hanumantraders/warehouse-agent/pkg/mailer"
	openrouterx "github.com/hanumantraders/warehouse-agent/pkg/openrouter"
)

const agentName = "warehouse_agent"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	openRouterClient := openrouterx.MustNewClient(*openRouterCfg)

	storeCfg := configx.MustNew[storex.Config]("POSTGRES")
	db, err := storex.New(ctx, *storeCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer db.Close()

	mailerCfg := configx.MustNew[mailerx.Config]("MAILER")
	mailClient := mailerx.MustNew(*mailerCfg)

	warehouse, err := tools.NewWarehouse(db, mailClient)
	if err != nil {
		log.Fatal().Err(err).Msg("build warehouse tools")
	}
	registry, err := warehouse.BuildRegistry()
	if err != nil {
		log.Fatal().Err(err).Msg("register tools")
	}

	backend, err := llm.NewClient(openRouterClient)
	if err != nil {
		log.Fatal().Err(err).Msg("build model backend")
	}

	prompts := promptx.LoadPromptSet()
	def := agentDefinition(prompts, openRouterCfg.Model, registry)

	agentCfg := configx.MustNew[orchestrator.Config]("AGENT")
	agent, err := orchestrator.New(def, backend, registry, *agentCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	serverCfg := configx.MustNew[api.Config]("SERVER")
	server := api.NewServer(*serverCfg, agent, db)

	log.Info().Str("agent", def.Name).Str("model", def.Model).Msg("warehouse agent starting")
	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func agentDefinition(prompts promptx.PromptSet, model string, registry *toolx.Registry) contractx.AgentDefinition {
	return contractx.AgentDefinition{
		Name:        agentName,
		Description: prompts.Description,
		Instruction: prompts.Instruction,
		Model:       model,
		Tools:       registry.Describe(),
	}
}
