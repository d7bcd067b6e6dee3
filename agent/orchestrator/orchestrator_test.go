package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/hanumantraders/warehouse-agent/agent/contract"
)

type scriptedBackend struct {
	outputs []contractx.ModelOutput
	err     error
	calls   int
}

func (b *scriptedBackend) Generate(_ context.Context, _ string, _ []contractx.Turn, _ []contractx.ToolDescriptor) (contractx.ModelOutput, error) {
	if b.err != nil {
		return contractx.ModelOutput{}, b.err
	}
	if b.calls >= len(b.outputs) {
		return contractx.ModelOutput{Kind: contractx.OutputNone}, nil
	}
	out := b.outputs[b.calls]
	b.calls++
	return out, nil
}

type fakeInvoker struct {
	tools   map[string]contractx.ToolDescriptor
	results map[string]contractx.ToolResult
	invoked []string
}

func (f *fakeInvoker) Lookup(name string) (contractx.ToolDescriptor, bool) {
	d, ok := f.tools[name]
	return d, ok
}

func (f *fakeInvoker) Invoke(_ context.Context, name string, _ map[string]any) contractx.ToolResult {
	f.invoked = append(f.invoked, name)
	if r, ok := f.results[name]; ok {
		return r
	}
	return contractx.ToolResult{Tool: name, Result: "ok"}
}

func textOut(s string) contractx.ModelOutput {
	return contractx.ModelOutput{Kind: contractx.OutputText, Text: s}
}

func callOut(tool string) contractx.ModelOutput {
	return contractx.ModelOutput{Kind: contractx.OutputToolCall, ToolCall: contractx.ToolCall{ID: "call_1", Name: tool}}
}

func testDefinition() contractx.AgentDefinition {
	return contractx.AgentDefinition{
		Name:        "warehouse_agent",
		Description: "test agent",
		Instruction: "answer questions",
		Model:       "test-model",
	}
}

func newService(t *testing.T, backend *scriptedBackend, invoker *fakeInvoker, cfg Config) *Service {
	t.Helper()
	svc, err := New(testDefinition(), backend, invoker, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{}
	invoker := &fakeInvoker{}

	if _, err := New(testDefinition(), nil, invoker, Config{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("nil backend: got %v, want ErrValidation", err)
	}
	if _, err := New(testDefinition(), backend, nil, Config{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("nil invoker: got %v, want ErrValidation", err)
	}
	def := testDefinition()
	def.Model = "  "
	if _, err := New(def, backend, invoker, Config{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("empty model: got %v, want ErrValidation", err)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	svc := newService(t, &scriptedBackend{}, &fakeInvoker{}, Config{})
	if _, err := svc.Chat(context.Background(), Request{Text: "   "}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestChatTextOnly(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{outputs: []contractx.ModelOutput{textOut("We stock 42 units.")}}
	invoker := &fakeInvoker{}
	svc := newService(t, backend, invoker, Config{})

	res, err := svc.Chat(context.Background(), Request{Text: "how many units?", UserID: "u1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Text != "We stock 42 units." {
		t.Fatalf("text = %q", res.Text)
	}
	if backend.calls != 1 {
		t.Fatalf("model calls = %d, want 1", backend.calls)
	}
	if res.ToolCalls != 0 || len(invoker.invoked) != 0 {
		t.Fatalf("unexpected tool activity: %d / %v", res.ToolCalls, invoker.invoked)
	}
}

func TestChatSingleToolCallThenText(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{outputs: []contractx.ModelOutput{
		callOut("fetch_suppliers_by_item"),
		textOut("Found 2 suppliers. Which one should I use?"),
	}}
	invoker := &fakeInvoker{
		tools: map[string]contractx.ToolDescriptor{
			"fetch_suppliers_by_item": {Name: "fetch_suppliers_by_item"},
		},
	}
	svc := newService(t, backend, invoker, Config{})

	res, err := svc.Chat(context.Background(), Request{Text: "Reorder 10 units of WidgetX"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Text != "Found 2 suppliers. Which one should I use?" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.ToolCalls != 1 {
		t.Fatalf("ToolCalls = %d, want 1", res.ToolCalls)
	}
	if len(invoker.invoked) != 1 || invoker.invoked[0] != "fetch_suppliers_by_item" {
		t.Fatalf("invoked = %v", invoker.invoked)
	}
	if backend.calls != 2 {
		t.Fatalf("model calls = %d, want 2", backend.calls)
	}
}

func TestChatUnknownToolIsTerminal(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{outputs: []contractx.ModelOutput{callOut("bogus_tool")}}
	invoker := &fakeInvoker{tools: map[string]contractx.ToolDescriptor{}}
	svc := newService(t, backend, invoker, Config{})

	res, err := svc.Chat(context.Background(), Request{Text: "do something"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Text != "Error: Tool bogus_tool not found." {
		t.Fatalf("text = %q", res.Text)
	}
	if backend.calls != 1 {
		t.Fatalf("model calls after unknown tool = %d, want 1", backend.calls)
	}
	if len(invoker.invoked) != 0 {
		t.Fatalf("invoked = %v, want none", invoker.invoked)
	}
}

func TestChatTurnCap(t *testing.T) {
	t.Parallel()

	outputs := make([]contractx.ModelOutput, 0, 6)
	for i := 0; i < 6; i++ {
		outputs = append(outputs, callOut("get_recent_sales"))
	}
	backend := &scriptedBackend{outputs: outputs}
	invoker := &fakeInvoker{
		tools: map[string]contractx.ToolDescriptor{
			"get_recent_sales": {Name: "get_recent_sales"},
		},
	}
	svc := newService(t, backend, invoker, Config{})

	res, err := svc.Chat(context.Background(), Request{Text: "keep looking"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Text != maxTurnsText {
		t.Fatalf("text = %q", res.Text)
	}
	if backend.calls != 5 {
		t.Fatalf("model calls = %d, want 5", backend.calls)
	}
	if res.ToolCalls != 5 {
		t.Fatalf("ToolCalls = %d, want 5", res.ToolCalls)
	}
}

func TestChatNoModelResponse(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{outputs: []contractx.ModelOutput{{Kind: contractx.OutputNone}}}
	svc := newService(t, backend, &fakeInvoker{}, Config{})

	res, err := svc.Chat(context.Background(), Request{Text: "hello"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Text != noResponseText {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestChatBackendErrorBecomesText(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{err: errors.New("upstream unavailable")}
	svc := newService(t, backend, &fakeInvoker{}, Config{})

	res, err := svc.Chat(context.Background(), Request{Text: "hello"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(res.Text, "Error interacting with agent") || !strings.Contains(res.Text, "upstream unavailable") {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestChatToolErrorIsTerminal(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{outputs: []contractx.ModelOutput{
		callOut("analyze_restock_needs"),
		textOut("should never be reached"),
	}}
	invoker := &fakeInvoker{
		tools: map[string]contractx.ToolDescriptor{
			"analyze_restock_needs": {Name: "analyze_restock_needs"},
		},
		results: map[string]contractx.ToolResult{
			"analyze_restock_needs": {Tool: "analyze_restock_needs", Error: "database offline"},
		},
	}
	svc := newService(t, backend, invoker, Config{})

	res, err := svc.Chat(context.Background(), Request{Text: "restock check"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Text != "Tool Error (analyze_restock_needs): database offline" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.ToolCalls != 0 {
		t.Fatalf("ToolCalls = %d, want 0", res.ToolCalls)
	}
	if backend.calls != 1 {
		t.Fatalf("model calls = %d, want 1", backend.calls)
	}
}

func TestChatNavigationSurfaced(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{outputs: []contractx.ModelOutput{
		callOut("navigate_ui"),
		textOut("Taking you to analytics."),
	}}
	invoker := &fakeInvoker{
		tools: map[string]contractx.ToolDescriptor{
			"navigate_ui": {Name: "navigate_ui"},
		},
		results: map[string]contractx.ToolResult{
			"navigate_ui": {
				Tool:   "navigate_ui",
				Result: contractx.NavigationSignal{Action: contractx.NavigationAction, Payload: "/analytics"},
			},
		},
	}
	svc := newService(t, backend, invoker, Config{})

	res, err := svc.Chat(context.Background(), Request{Text: "open analytics"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Navigation == nil || res.Navigation.Route != "/analytics" {
		t.Fatalf("navigation = %+v", res.Navigation)
	}
	if res.Text != "Taking you to analytics." {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestChatConfirmationGate(t *testing.T) {
	t.Parallel()

	tools := map[string]contractx.ToolDescriptor{
		"send_order_email": {Name: "send_order_email", RequiresConfirmation: true},
	}

	t.Run("blocked without confirmation", func(t *testing.T) {
		t.Parallel()

		backend := &scriptedBackend{outputs: []contractx.ModelOutput{callOut("send_order_email")}}
		invoker := &fakeInvoker{tools: tools}
		svc := newService(t, backend, invoker, Config{EnforceConfirmation: true})

		res, err := svc.Chat(context.Background(), Request{Text: "order more"})
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if !strings.Contains(res.Text, "confirmation") {
			t.Fatalf("text = %q", res.Text)
		}
		if len(invoker.invoked) != 0 {
			t.Fatalf("invoked = %v, want none", invoker.invoked)
		}
	})

	t.Run("allowed when confirmed", func(t *testing.T) {
		t.Parallel()

		backend := &scriptedBackend{outputs: []contractx.ModelOutput{
			callOut("send_order_email"),
			textOut("Order placed."),
		}}
		invoker := &fakeInvoker{tools: tools}
		svc := newService(t, backend, invoker, Config{EnforceConfirmation: true})

		res, err := svc.Chat(context.Background(), Request{Text: "order more", Confirmed: true})
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if res.Text != "Order placed." {
			t.Fatalf("text = %q", res.Text)
		}
		if len(invoker.invoked) != 1 {
			t.Fatalf("invoked = %v, want one send", invoker.invoked)
		}
	})

	t.Run("gate off by default", func(t *testing.T) {
		t.Parallel()

		backend := &scriptedBackend{outputs: []contractx.ModelOutput{
			callOut("send_order_email"),
			textOut("Order placed."),
		}}
		invoker := &fakeInvoker{tools: tools}
		svc := newService(t, backend, invoker, Config{})

		res, err := svc.Chat(context.Background(), Request{Text: "order more"})
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		if res.Text != "Order placed." || len(invoker.invoked) != 1 {
			t.Fatalf("text = %q invoked = %v", res.Text, invoker.invoked)
		}
	})
}

func TestChatRepeatedConfirmedSends(t *testing.T) {
	t.Parallel()

	tools := map[string]contractx.ToolDescriptor{
		"send_order_email": {Name: "send_order_email", RequiresConfirmation: true},
	}
	invoker := &fakeInvoker{tools: tools}

	for i := 0; i < 2; i++ {
		backend := &scriptedBackend{outputs: []contractx.ModelOutput{
			callOut("send_order_email"),
			textOut("Order placed."),
		}}
		svc := newService(t, backend, invoker, Config{EnforceConfirmation: true})
		if _, err := svc.Chat(context.Background(), Request{Text: "order more", Confirmed: true}); err != nil {
			t.Fatalf("Chat %d: %v", i, err)
		}
	}
	if len(invoker.invoked) != 2 {
		t.Fatalf("invoked = %v, want two sends", invoker.invoked)
	}
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	if st := advance(textOut("hi")); st.phase != phaseDone || st.text != "hi" {
		t.Fatalf("text output: %+v", st)
	}
	if st := advance(callOut("x")); st.phase != phaseExecutingTool || st.call.Name != "x" {
		t.Fatalf("tool output: %+v", st)
	}
	st := advance(contractx.ModelOutput{Kind: contractx.OutputNone})
	if st.phase != phaseFailed || st.failure != failNoModelResponse || st.text != noResponseText {
		t.Fatalf("none output: %+v", st)
	}
}
