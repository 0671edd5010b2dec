package markdown

import (
	"strings"
	"testing"
)

type panicRenderer struct{}

func (panicRenderer) Render(string) (string, error) {
	panic("boom")
}

func TestSafeRender_RecoversFromRendererPanic(t *testing.T) {
	const renderWidth = 20

	rendererMu.Lock()
	prev, hadPrev := renderers[renderWidth]
	renderers[renderWidth] = panicRenderer{}
	rendererMu.Unlock()

	defer func() {
		rendererMu.Lock()
		if hadPrev {
			renderers[renderWidth] = prev
		} else {
			delete(renderers, renderWidth)
		}
		rendererMu.Unlock()
	}()

	out := SafeRender(renderWidth, 0, []byte("hello\n"))
	if string(out) != "hello" {
		t.Fatalf("expected fallback to original markdown, got %q", string(out))
	}
}

func TestRender_Empty(t *testing.T) {
	if out := Render(40, 0, []byte(" \n\n")); out != nil {
		t.Fatalf("expected nil for blank input, got %q", string(out))
	}
}

func TestRender_IndentsAndKeepsText(t *testing.T) {
	out := string(Render(40, 2, []byte("Buy *oat* milk")))

	if !strings.HasPrefix(out, "  ") {
		t.Fatalf("expected indented output, got %q", out)
	}
	if !strings.Contains(out, "Buy") || !strings.Contains(out, "milk") {
		t.Fatalf("expected text to survive rendering, got %q", out)
	}
	if strings.HasSuffix(out, "\n") {
		t.Fatalf("expected trailing newlines trimmed, got %q", out)
	}
}
