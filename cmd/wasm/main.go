//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/alberti/alberti/backend-go/internal/document"
	"github.com/alberti/alberti/backend-go/internal/geometry"
	"github.com/alberti/alberti/backend-go/internal/layers"
	"github.com/alberti/alberti/backend-go/internal/session"
)

var sess *session.Session

// browserStore hands saved documents to the page's albertiSave callback.
type browserStore struct{}

func (browserStore) LoadDocument(context.Context, string) (*document.Document, error) {
	return nil, errors.New("documents are loaded by the page")
}

func (browserStore) SaveDocument(_ context.Context, _ string, doc *document.Document) error {
	save := js.Global().Get("albertiSave")
	if save.Type() != js.TypeFunction {
		return errors.New("albertiSave is not defined")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	save.Invoke(string(data))
	doc.Version++
	return nil
}

func main() {
	albertiEngine := js.Global().Get("Object").New()

	albertiEngine.Set("loadDocument", js.FuncOf(recovered(loadDocument)))
	albertiEngine.Set("loadSampleDocument", js.FuncOf(recovered(loadSampleDocument)))
	albertiEngine.Set("apply", js.FuncOf(recovered(apply)))
	albertiEngine.Set("intersect", js.FuncOf(recovered(intersect)))

	js.Global().Set("albertiEngine", albertiEngine)
	js.Global().Set("albertiWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// recovered turns a panic into an error reply. A panic takes down the Go
// runtime of the page otherwise. The open drawing may be half edited
// afterwards, so it is dropped and the page has to load it again.
func recovered(fn func(js.Value, []js.Value) any) func(js.Value, []js.Value) any {
	return func(this js.Value, args []js.Value) (result any) {
		defer func() {
			if r := recover(); r != nil {
				sess = nil
				result = errorValue(fmt.Errorf("engine error, reload the drawing: %v", r))
			}
		}()
		return fn(this, args)
	}
}

func open(doc *document.Document) any {
	s, err := session.New(doc.ID, doc, browserStore{}, layers.WithIDGenerator(&layers.Counter{}))
	if err != nil {
		return errorValue(err)
	}
	sess = s
	return js.ValueOf(reply(sess.Welcome("wasm")))
}

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue(errors.New("missing document JSON"))
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(args[0].String()), &doc); err != nil {
		return errorValue(err)
	}
	return open(&doc)
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	drawingID := "drw_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		drawingID = args[0].String()
	}
	return open(document.NewSampleDocument(drawingID))
}

// apply takes a request message as JSON and returns the reply as JSON,
// speaking the same protocol as the websocket endpoint.
func apply(this js.Value, args []js.Value) any {
	if sess == nil {
		return errorValue(errors.New("no document loaded"))
	}
	if len(args) < 1 {
		return errorValue(errors.New("missing message JSON"))
	}

	var msg session.Message
	if err := json.Unmarshal([]byte(args[0].String()), &msg); err != nil {
		return errorValue(err)
	}
	return js.ValueOf(reply(sess.Apply(context.Background(), &msg)))
}

func intersect(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return errorValue(errors.New("need two shapes"))
	}

	var shapes [2]geometry.Shape
	for i := range shapes {
		var n document.ShapeNode
		if err := json.Unmarshal([]byte(args[i].String()), &n); err != nil {
			return errorValue(err)
		}
		s, err := document.DecodeShape(n)
		if err != nil {
			return errorValue(err)
		}
		shapes[i] = s
	}

	pts, err := geometry.Intersect(shapes[0], shapes[1])
	if err != nil {
		return errorValue(err)
	}
	data, _ := json.Marshal(pts)
	return js.ValueOf(string(data))
}

func reply(msg *session.Message) string {
	data, _ := json.Marshal(msg)
	return string(data)
}

func errorValue(err error) js.Value {
	return js.ValueOf(map[string]any{"error": err.Error()})
}
