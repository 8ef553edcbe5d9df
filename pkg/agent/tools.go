package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-go-golems/skycast/pkg/helpers"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	go_openai "github.com/sashabaranov/go-openai"
)

// Tool is a Go function exposed to the model. Its parameters are reflected into
// a JSON schema; a leading context.Context is passed through and not exposed.
type Tool struct {
	Name        string
	Description string
	Func        helpers.Callable
}

type Toolbox struct {
	reflector *jsonschema.Reflector
	tools     map[string]Tool
	order     []string
}

func NewToolbox(tools ...Tool) (*Toolbox, error) {
	tb := &Toolbox{
		reflector: &jsonschema.Reflector{DoNotReference: true},
		tools:     map[string]Tool{},
	}
	for _, t := range tools {
		if err := tb.Register(t); err != nil {
			return nil, err
		}
	}
	return tb, nil
}

func (tb *Toolbox) Register(t Tool) error {
	if t.Name == "" {
		return errors.New("tool name is required")
	}
	if _, ok := tb.tools[t.Name]; ok {
		return errors.Errorf("tool %s already registered", t.Name)
	}
	if reflect.ValueOf(t.Func).Kind() != reflect.Func {
		return errors.Errorf("tool %s is not a function", t.Name)
	}
	tb.tools[t.Name] = t
	tb.order = append(tb.order, t.Name)
	return nil
}

func (tb *Toolbox) Names() []string {
	return append([]string(nil), tb.order...)
}

// Definitions returns the tools in the shape the chat completion API expects.
func (tb *Toolbox) Definitions() ([]go_openai.Tool, error) {
	ret := make([]go_openai.Tool, 0, len(tb.order))
	for _, name := range tb.order {
		t := tb.tools[name]
		schema, err := helpers.GetFunctionParametersJsonSchema(tb.reflector, t.Func)
		if err != nil {
			return nil, errors.Wrapf(err, "could not build schema for tool %s", name)
		}
		ret = append(ret, go_openai.Tool{
			Type: go_openai.ToolTypeFunction,
			Function: &go_openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  schema,
			},
		})
	}
	return ret, nil
}

// Call runs the named tool with JSON arguments and renders its result as text.
// Failures are rendered too, the model gets to see them.
func (tb *Toolbox) Call(ctx context.Context, name string, arguments string) string {
	t, ok := tb.tools[name]
	if !ok {
		return fmt.Sprintf("Error: %s is not a valid tool, try one of [%s].", name, strings.Join(tb.order, ", "))
	}

	out, err := helpers.CallFunctionFromJson(ctx, t.Func, json.RawMessage(arguments))
	if err != nil {
		return fmt.Sprintf("Error: invalid arguments for %s: %s", name, err)
	}
	return renderResult(out)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func renderResult(out []reflect.Value) string {
	if len(out) == 0 {
		return ""
	}
	last := out[len(out)-1]
	if last.Type().Implements(errorType) {
		if !last.IsNil() {
			return fmt.Sprintf("Error: %s", last.Interface().(error))
		}
		out = out[:len(out)-1]
		if len(out) == 0 {
			return ""
		}
	}

	v := out[0].Interface()
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("Error: could not encode result: %s", err)
	}
	return string(b)
}
