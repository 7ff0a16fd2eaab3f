package suite

import (
	_ "embed"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// ParseCUE decodes a suite from CUE source. The top-level value is unified
// with the #Suite schema, so schema defaults fill unset fields and
// constraint violations are reported with their source position.
func ParseCUE(data []byte, filename string) (*Suite, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, &LoadError{Code: CodeSchema, Message: "compiling suite schema: " + err.Error(), Err: err}
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: CodeParseFailed, Message: cueMessage(err), Err: err}
	}

	unified := schema.LookupPath(cue.ParsePath("#Suite")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: CodeSchema, Message: cueMessage(err), Err: err}
	}

	var s Suite
	if err := unified.Decode(&s); err != nil {
		return nil, &LoadError{Code: CodeParseFailed, Message: cueMessage(err), Err: err}
	}
	return finish(&s)
}

// cueMessage flattens a CUE error list into one line, keeping the first
// position of each error.
func cueMessage(err error) string {
	var list cueerrors.Error
	if !errors.As(err, &list) {
		return err.Error()
	}
	msg := ""
	for i, e := range cueerrors.Errors(list) {
		if i > 0 {
			msg += "; "
		}
		if pos := e.Position(); pos.IsValid() {
			msg += pos.String() + ": "
		}
		format, args := e.Msg()
		msg += fmt.Sprintf(format, args...)
	}
	return msg
}
