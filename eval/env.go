package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/takoeight0821/lox/token"
	"github.com/takoeight0821/lox/utils"
)

// Environment is a chain of scopes kept in an arena.
// Each scope refers to its enclosing scope by index; the global scope has parent -1.
type Environment struct {
	scopes  []scope
	current int
}

type scope struct {
	parent int
	values map[string]Value
}

const noParent = -1

func NewEnvironment() *Environment {
	return &Environment{
		scopes:  []scope{{parent: noParent, values: make(map[string]Value)}},
		current: 0,
	}
}

// Push opens a child scope of the current one.
func (env *Environment) Push() {
	env.scopes = append(env.scopes, scope{parent: env.current, values: make(map[string]Value)})
	env.current = len(env.scopes) - 1
}

// Pop closes the current scope. The global scope is never closed.
func (env *Environment) Pop() {
	if env.current == 0 {
		return
	}
	// scopes nest strictly, so the current scope is always the last one.
	closed := env.current
	env.current = env.scopes[closed].parent
	env.scopes[closed] = scope{}
	env.scopes = env.scopes[:closed]
}

// Depth is the number of scopes from the current one to the global one, inclusive.
func (env *Environment) Depth() int {
	depth := 0
	for i := env.current; i != noParent; i = env.scopes[i].parent {
		depth++
	}
	return depth
}

// Define binds name in the current scope, replacing any previous binding there.
func (env *Environment) Define(name string, v Value) {
	env.scopes[env.current].values[name] = v
}

// resolve finds the nearest scope that binds name.
func (env *Environment) resolve(name string) (int, bool) {
	for i := env.current; i != noParent; i = env.scopes[i].parent {
		if _, ok := env.scopes[i].values[name]; ok {
			return i, true
		}
	}
	return noParent, false
}

func (env *Environment) Get(name token.Token) (Value, error) {
	i, ok := env.resolve(name.Lexeme)
	if !ok {
		return nil, undefinedVariable(name)
	}
	return env.scopes[i].values[name.Lexeme], nil
}

// Assign updates an existing binding. It never creates one.
func (env *Environment) Assign(name token.Token, v Value) error {
	i, ok := env.resolve(name.Lexeme)
	if !ok {
		return undefinedVariable(name)
	}
	env.scopes[i].values[name.Lexeme] = v
	return nil
}

func (env *Environment) String() string {
	var b strings.Builder
	for i := env.current; i != noParent; i = env.scopes[i].parent {
		if i != env.current {
			b.WriteString("\n\t&")
		}
		names := make([]string, 0, len(env.scopes[i].values))
		for name := range env.scopes[i].values {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("{")
		for _, name := range names {
			b.WriteString(fmt.Sprintf(" %s:%v", name, env.scopes[i].values[name]))
		}
		b.WriteString(" }")
	}
	return b.String()
}

type UndefinedVariableError struct {
	Name string
}

func (e UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable `%s`", e.Name)
}

func undefinedVariable(name token.Token) error {
	return utils.PosError{Where: name, Err: UndefinedVariableError{Name: name.Lexeme}}
}
