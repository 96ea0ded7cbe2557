package utils

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/takoeight0821/lox/token"
	"gopkg.in/yaml.v3"
)

// PosError attaches the offending token to an error.
type PosError struct {
	Where token.Token
	Err   error
}

func (e PosError) Error() string {
	return MsgAt(e.Where, e.Err.Error())
}

func (e PosError) Unwrap() error {
	return e.Err
}

// MsgAt formats msg with the line and lexeme of where.
func MsgAt(where token.Token, msg string) string {
	if where.Kind == token.EOF {
		return fmt.Sprintf("at end: %s", msg)
	}
	return fmt.Sprintf("at %d: `%s`, %s", where.Line, where.Lexeme, msg)
}

type TestData struct {
	Label    string
	Enable   bool
	Input    string
	Expected map[string]string
}

// ReadTestData decodes a YAML list of test cases and drops the disabled ones.
func ReadTestData(s []byte) ([]TestData, error) {
	var data []TestData
	if err := yaml.Unmarshal(s, &data); err != nil {
		return nil, fmt.Errorf("read test data: %w", err)
	}

	// Remove disabled test cases.
	i := 0
	for _, d := range data {
		if d.Enable {
			data[i] = d
			i++
		}
	}
	data = data[:i]

	return data, nil
}

// FindSourceFiles returns every .lox file under root in lexical order.
func FindSourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".lox" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	return files, nil
}
