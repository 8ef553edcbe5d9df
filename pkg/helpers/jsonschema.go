package helpers

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Callable is a type representing any callable function
type Callable interface{}

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

// toolParameters returns the parameter types of f, skipping a leading context.Context.
func toolParameters(f Callable) (reflect.Value, []reflect.Type, bool, error) {
	funcVal := reflect.ValueOf(f)
	if !funcVal.IsValid() || funcVal.Kind() != reflect.Func {
		return reflect.Value{}, nil, false, errors.Errorf("provided callable is not a function")
	}
	funcType := funcVal.Type()

	takesContext := funcType.NumIn() > 0 && funcType.In(0) == contextType
	start := 0
	if takesContext {
		start = 1
	}
	params := make([]reflect.Type, 0, funcType.NumIn()-start)
	for i := start; i < funcType.NumIn(); i++ {
		params = append(params, funcType.In(i))
	}
	return funcVal, params, takesContext, nil
}

// GetFunctionParametersJsonSchema generates a JSON Schema for the arguments of the given function.
// A leading context.Context parameter is not part of the schema.
func GetFunctionParametersJsonSchema(reflector *jsonschema.Reflector, f Callable) (*jsonschema.Schema, error) {
	_, params, _, err := toolParameters(f)
	if err != nil {
		return nil, err
	}

	switch len(params) {
	case 0:
		return &jsonschema.Schema{Type: "object"}, nil
	case 1:
		singleParamInstance := reflect.New(params[0]).Elem().Interface()
		return reflector.Reflect(singleParamInstance), nil
	}

	schema := &jsonschema.Schema{
		Type:  "array",
		Items: &jsonschema.Schema{},
	}
	paramSchemas := make([]*jsonschema.Schema, 0, len(params))
	for _, paramType := range params {
		paramInstance := reflect.New(paramType).Elem().Interface()
		paramSchemas = append(paramSchemas, reflector.Reflect(paramInstance))
	}
	schema.PrefixItems = paramSchemas

	return schema, nil
}

// CallFunctionFromJson calls f with arguments decoded from jsonArgs. If f takes a
// context.Context as its first parameter, ctx is passed along.
//
// A single-parameter function receives jsonArgs decoded into that parameter,
// a multi-parameter function expects jsonArgs to be a JSON array.
func CallFunctionFromJson(ctx context.Context, f Callable, jsonArgs json.RawMessage) ([]reflect.Value, error) {
	funcVal, params, takesContext, err := toolParameters(f)
	if err != nil {
		return nil, err
	}

	var args []reflect.Value
	if takesContext {
		if ctx == nil {
			ctx = context.Background()
		}
		args = append(args, reflect.ValueOf(ctx))
	}

	if len(jsonArgs) == 0 {
		jsonArgs = json.RawMessage("{}")
	}

	switch len(params) {
	case 0:
	case 1:
		argPtr := reflect.New(params[0])
		if err := json.Unmarshal(jsonArgs, argPtr.Interface()); err != nil {
			return nil, errors.Wrap(err, "could not decode arguments")
		}
		args = append(args, argPtr.Elem())
	default:
		var rawArgs []json.RawMessage
		if err := json.Unmarshal(jsonArgs, &rawArgs); err != nil {
			return nil, errors.Wrap(err, "could not decode argument list")
		}
		if len(rawArgs) != len(params) {
			return nil, errors.Errorf("expected %d arguments, got %d", len(params), len(rawArgs))
		}
		for i, rawArg := range rawArgs {
			argPtr := reflect.New(params[i])
			if err := json.Unmarshal(rawArg, argPtr.Interface()); err != nil {
				return nil, errors.Wrapf(err, "could not decode argument %d", i)
			}
			args = append(args, argPtr.Elem())
		}
	}

	return funcVal.Call(args), nil
}
