package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sherine-k/bankqueue/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRoster = `{
  "departments": [
    { "name": "Deposits", "employees": 2 },
    { "name": "Loans", "employees": 1 }
  ],
  "clients": [
    { "name": "Alice", "time": 100, "priority": 2, "departments": ["Deposits", "Loans"] },
    { "name": "Bob", "time": 50, "priority": 1, "departments": [] }
  ]
}`

func TestParse_Valid(t *testing.T) {
	roster, err := config.Parse([]byte(validRoster))
	require.NoError(t, err)

	assert.Equal(t, []config.Department{
		{Name: "Deposits", Employees: 2},
		{Name: "Loans", Employees: 1},
	}, roster.Departments)

	require.Len(t, roster.Clients, 2)
	assert.Equal(t, config.Client{
		Name:        "Alice",
		Time:        100,
		Priority:    2,
		Departments: []string{"Deposits", "Loans"},
	}, roster.Clients[0])
	assert.Equal(t, 100*time.Millisecond, roster.Clients[0].ServiceDuration())
	assert.Empty(t, roster.Clients[1].Departments)

	dept, ok := roster.Department("Loans")
	assert.True(t, ok)
	assert.Equal(t, 1, dept.Employees)
	_, ok = roster.Department("Mortgages")
	assert.False(t, ok)
}

func TestParse_YAMLInput(t *testing.T) {
	input := `
departments:
  - name: Cash
    employees: 0
clients: []
`
	roster, err := config.Parse([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, []config.Department{{Name: "Cash", Employees: 0}}, roster.Departments)
	assert.Empty(t, roster.Clients)
}

func TestParse_ConfigurationErrors(t *testing.T) {
	tests := map[string]struct {
		input    string
		sentinel error
		path     string
	}{
		"Empty_Document": {
			input:    ``,
			sentinel: config.ErrNotObject,
		},
		"Root_Is_Array": {
			input:    `[1, 2, 3]`,
			sentinel: config.ErrNotObject,
		},
		"Root_Is_Scalar": {
			input:    `"bank"`,
			sentinel: config.ErrNotObject,
		},
		"Missing_Departments": {
			input:    `{"clients": []}`,
			sentinel: config.ErrMissingField,
			path:     "departments",
		},
		"Missing_Clients": {
			input:    `{"departments": []}`,
			sentinel: config.ErrMissingField,
			path:     "clients",
		},
		"Departments_Not_Array": {
			input:    `{"departments": {"name": "x"}, "clients": []}`,
			sentinel: config.ErrWrongType,
			path:     "departments",
		},
		"Clients_Not_Array": {
			input:    `{"departments": [], "clients": "none"}`,
			sentinel: config.ErrWrongType,
			path:     "clients",
		},
		"Department_Entry_Not_Object": {
			input:    `{"departments": ["Loans"], "clients": []}`,
			sentinel: config.ErrWrongType,
			path:     "departments[0]",
		},
		"Department_Missing_Employees": {
			input:    `{"departments": [{"name": "Loans"}], "clients": []}`,
			sentinel: config.ErrMissingField,
			path:     "departments[0].employees",
		},
		"Department_Employees_String": {
			input:    `{"departments": [{"name": "Loans", "employees": "two"}], "clients": []}`,
			sentinel: config.ErrWrongType,
			path:     "departments[0].employees",
		},
		"Department_Employees_Float": {
			input:    `{"departments": [{"name": "Loans", "employees": 1.5}], "clients": []}`,
			sentinel: config.ErrWrongType,
			path:     "departments[0].employees",
		},
		"Department_Name_Number": {
			input:    `{"departments": [{"name": 7, "employees": 1}], "clients": []}`,
			sentinel: config.ErrWrongType,
			path:     "departments[0].name",
		},
		"Department_Negative_Employees": {
			input:    `{"departments": [{"name": "Loans", "employees": -1}], "clients": []}`,
			sentinel: config.ErrNegativeValue,
			path:     "departments[0].employees",
		},
		"Duplicate_Department": {
			input:    `{"departments": [{"name": "Loans", "employees": 1}, {"name": "Loans", "employees": 2}], "clients": []}`,
			sentinel: config.ErrDuplicateDepartment,
			path:     "departments[1].name",
		},
		"Client_Missing_Priority": {
			input:    `{"departments": [], "clients": [{"name": "A", "time": 1, "departments": []}]}`,
			sentinel: config.ErrMissingField,
			path:     "clients[0].priority",
		},
		"Client_Missing_Departments": {
			input:    `{"departments": [], "clients": [{"name": "A", "time": 1, "priority": 1}]}`,
			sentinel: config.ErrMissingField,
			path:     "clients[0].departments",
		},
		"Client_Negative_Time": {
			input:    `{"departments": [], "clients": [{"name": "A", "time": -5, "priority": 1, "departments": []}]}`,
			sentinel: config.ErrNegativeValue,
			path:     "clients[0].time",
		},
		"Client_Department_Not_String": {
			input:    `{"departments": [{"name": "Loans", "employees": 1}], "clients": [{"name": "A", "time": 1, "priority": 1, "departments": [3]}]}`,
			sentinel: config.ErrWrongType,
			path:     "clients[0].departments[0]",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			roster, err := config.Parse([]byte(tc.input))
			require.Error(t, err)
			assert.Nil(t, roster)

			var cfgErr *config.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %T: %v", err, err)
			assert.ErrorIs(t, err, tc.sentinel)
			assert.Equal(t, tc.path, cfgErr.Path)
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := config.Parse([]byte(`{"departments": [`))
	require.Error(t, err)

	var cfgErr *config.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, config.ErrSyntax)
	assert.NotErrorIs(t, err, config.ErrNotObject)
}

func TestParse_UnknownDepartmentIsReferenceError(t *testing.T) {
	input := `{
  "departments": [{ "name": "Loans", "employees": 1 }],
  "clients": [{ "name": "Carol", "time": 10, "priority": 0, "departments": ["Loans", "Vault"] }]
}`
	_, err := config.Parse([]byte(input))
	require.Error(t, err)

	var refErr *config.ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "Carol", refErr.Client)
	assert.Equal(t, "Vault", refErr.Department)
	assert.Contains(t, err.Error(), `"Vault"`)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	require.NoError(t, os.WriteFile(path, []byte(validRoster), 0o644))

	roster, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, roster.Departments, 2)

	_, err = config.LoadConfig(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_HandBuiltRoster(t *testing.T) {
	assert.ErrorIs(t, config.Validate(nil), config.ErrNotObject)

	err := config.Validate(&config.Roster{
		Departments: []config.Department{{Name: "Loans", Employees: -3}},
	})
	assert.ErrorIs(t, err, config.ErrNegativeValue)

	err = config.Validate(&config.Roster{
		Departments: []config.Department{{Name: "Loans", Employees: 1}},
		Clients:     []config.Client{{Name: "Ann", Time: -1}},
	})
	assert.ErrorIs(t, err, config.ErrNegativeValue)

	assert.NoError(t, config.Validate(&config.Roster{
		Departments: []config.Department{{Name: "Loans", Employees: 1}},
		Clients:     []config.Client{{Name: "Ann", Time: 10, Departments: []string{"Loans", "Loans"}}},
	}))
}
