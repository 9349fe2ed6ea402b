package stage

import (
	"context"
	"errors"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

const (
	defaultLuaTimeout          = 200 * time.Millisecond
	defaultLuaInstructionLimit = 1000000
)

var (
	errSandboxTimeout      = errors.New("sandbox timeout")
	errSandboxInstructions = errors.New("sandbox instruction limit")
)

// luaSandbox bounds one script evaluation. Only the base, string, table and
// math libraries are loaded; file and module loaders are removed.
type luaSandbox struct {
	timeout          time.Duration
	instructionLimit int
}

func sandboxFor(meta *Meta) luaSandbox {
	s := luaSandbox{timeout: defaultLuaTimeout, instructionLimit: defaultLuaInstructionLimit}
	if meta == nil || meta.LuaSandbox == nil {
		return s
	}
	if ms := meta.LuaSandbox.TimeoutMs; ms > 0 {
		s.timeout = time.Duration(ms) * time.Millisecond
	}
	if n := meta.LuaSandbox.InstructionLimit; n > 0 {
		s.instructionLimit = n
	}
	return s
}

func (s luaSandbox) newState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		RegistrySize:    256,
		RegistryMaxSize: 4096,
	})
	open := map[string]lua.LGFunction{
		lua.BaseLibName:   lua.OpenBase,
		lua.StringLibName: lua.OpenString,
		lua.TabLibName:    lua.OpenTable,
		lua.MathLibName:   lua.OpenMath,
	}
	for _, name := range []string{lua.BaseLibName, lua.StringLibName, lua.TabLibName, lua.MathLibName} {
		L.Push(L.NewFunction(open[name]))
		L.Push(lua.LString(name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// eval runs code after setGlobals has populated the state and returns the
// script's first result.
func (s luaSandbox) eval(ctx context.Context, code string, setGlobals func(*lua.LState)) (lua.LValue, error) {
	chunk, err := parse.Parse(strings.NewReader(code), "filter")
	if err != nil {
		return lua.LNil, err
	}
	if chunkCost(chunk, len(code)) > s.instructionLimit {
		return lua.LNil, errSandboxInstructions
	}
	proto, err := lua.Compile(chunk, "filter")
	if err != nil {
		return lua.LNil, err
	}
	L := s.newState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	L.SetContext(ctx)
	if setGlobals != nil {
		setGlobals(L)
	}

	L.Push(L.NewFunctionFromProto(proto))
	if err := L.PCall(0, 1, nil); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return lua.LNil, errSandboxTimeout
		}
		return lua.LNil, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

func stringsTable(L *lua.LState, items []string) *lua.LTable {
	t := L.CreateTable(len(items), 0)
	for _, s := range items {
		t.Append(lua.LString(s))
	}
	return t
}
