package stage

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// filterError marks a record whose filter script failed or broke a sandbox limit.
type filterError struct{ msg string }

func (e *filterError) Error() string { return e.msg }

type filterResult struct {
	keep bool
	rec  Record
	envE *Error
}

var returnToken = regexp.MustCompile(`(^|[^A-Za-z0-9_])return([^A-Za-z0-9_]|$)`)

// filterChunk turns a bare expression into a chunk returning it. Code with
// its own return statement is used as is.
func filterChunk(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || returnToken.MatchString(code) {
		return code
	}
	return "return (" + code + ")"
}

// lua-filter: keep artifacts for which the configured predicate is truthy.
// Globals: name, kind, plugin, path and files (skill supporting files).
func luaFilterRunner(ctx context.Context, in Envelope, deps Deps) (Envelope, error) {
	if in.Meta == nil || strings.TrimSpace(in.Meta.FilterInline) == "" {
		return in, nil
	}
	chunk := filterChunk(in.Meta.FilterInline)
	sandbox := sandboxFor(in.Meta)
	n := len(in.Records)
	results := runIndexed(n, getWorkers(in.Meta), func(idx int) filterResult {
		r := in.Records[idx]
		if r.Failed() {
			return filterResult{keep: true, rec: r}
		}
		keep, err := evalFilter(ctx, sandbox, r, chunk)
		if err != nil {
			e := recordError(StageLuaFilter, r.Locator, err)
			r.Error = &e
			return filterResult{keep: true, rec: r, envE: &e}
		}
		return filterResult{keep: keep, rec: r}
	})

	out := in
	out.Records = make([]Record, 0, n)
	var envErrs []Error
	for _, rr := range results {
		if rr.keep {
			out.Records = append(out.Records, rr.rec)
		}
		if rr.envE != nil {
			envErrs = append(envErrs, *rr.envE)
		}
	}
	meta := *in.Meta
	meta.FilteredOut = n - len(out.Records)
	out.Meta = &meta
	appendErrors(&out, envErrs)
	deps.logger().Debug("lua filter applied", "kept", len(out.Records), "dropped", meta.FilteredOut)
	return out, nil
}

func evalFilter(ctx context.Context, sandbox luaSandbox, r Record, chunk string) (bool, error) {
	ret, err := sandbox.eval(ctx, chunk, func(L *lua.LState) {
		L.SetGlobal("name", lua.LString(r.Name))
		L.SetGlobal("kind", lua.LString(r.Kind))
		L.SetGlobal("plugin", lua.LString(r.Plugin))
		L.SetGlobal("path", lua.LString(r.Locator))
		L.SetGlobal("files", stringsTable(L, r.SupportingFiles))
	})
	if err != nil {
		return false, &filterError{msg: fmt.Sprintf("filter: %v", err)}
	}
	return lua.LVAsBool(ret), nil
}
