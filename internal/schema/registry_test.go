package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinRegistry(t *testing.T) {
	r := MustBuiltinRegistry()

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	def := r.Default()
	if def == nil || def.Name != DefaultSheet {
		t.Fatalf("Default() = %+v, want %q schema", def, DefaultSheet)
	}

	wantCols := []string{"Name", "Amount", "Date", "Verified"}
	if got := def.Columns(); strings.Join(got, ",") != strings.Join(wantCols, ",") {
		t.Errorf("Default columns = %v, want %v", got, wantCols)
	}

	inv, ok := r.Lookup("Invoices")
	if !ok {
		t.Fatal("Lookup(Invoices) not found")
	}
	amount, ok := inv.Field("Amount")
	if !ok || !amount.AllowZero {
		t.Errorf("Invoices Amount rule = %+v, want allowZero", amount)
	}
	receipt, _ := inv.Field("Receipt Date")
	if receipt.Required {
		t.Error("Invoices Receipt Date should be optional")
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := MustBuiltinRegistry()

	tests := []struct {
		sheet string
		want  string
	}{
		{"Invoices", "Invoices"},
		{"Default", "Default"},
		{"Misc", "Default"},
		{"", "Default"},
		{"invoices", "Default"}, // lookup is exact
	}

	for _, tt := range tests {
		t.Run(tt.sheet, func(t *testing.T) {
			got := r.Resolve(tt.sheet)
			if got == nil {
				t.Fatal("Resolve returned nil")
			}
			if got.Name != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.sheet, got.Name, tt.want)
			}
		})
	}
}

func TestNewRegistry_Validation(t *testing.T) {
	base := func() []FieldRule {
		return []FieldRule{{Column: "Name", Type: TypeString, OutputKey: "name"}}
	}

	tests := []struct {
		name    string
		schemas []SheetSchema
		wantErr string
	}{
		{
			name:    "missing default",
			schemas: []SheetSchema{{Name: "Other", Fields: base()}},
			wantErr: "missing Default",
		},
		{
			name: "duplicate output key",
			schemas: []SheetSchema{{Name: DefaultSheet, Fields: []FieldRule{
				{Column: "A", Type: TypeString, OutputKey: "x"},
				{Column: "B", Type: TypeString, OutputKey: "x"},
			}}},
			wantErr: "fields: duplicate outputKey",
		},
		{
			name: "duplicate column",
			schemas: []SheetSchema{{Name: DefaultSheet, Fields: []FieldRule{
				{Column: "A", Type: TypeString, OutputKey: "a"},
				{Column: "A", Type: TypeString, OutputKey: "b"},
			}}},
			wantErr: "fields: duplicate column",
		},
		{
			name: "unknown type",
			schemas: []SheetSchema{{Name: DefaultSheet, Fields: []FieldRule{
				{Column: "A", Type: "money", OutputKey: "a"},
			}}},
			wantErr: `fields[0].type: "money" is not one of`,
		},
		{
			name: "boolean without two values",
			schemas: []SheetSchema{{Name: DefaultSheet, Fields: []FieldRule{
				{Column: "A", Type: TypeBoolean, ValidValues: []string{"Yes"}, OutputKey: "a"},
			}}},
			wantErr: "validValues: needs exactly 2 values",
		},
		{
			name: "allowZero on string",
			schemas: []SheetSchema{{Name: DefaultSheet, Fields: []FieldRule{
				{Column: "A", Type: TypeString, AllowZero: true, OutputKey: "a"},
			}}},
			wantErr: "fields[0].allowZero: applies to number fields only",
		},
		{
			name: "missing output key",
			schemas: []SheetSchema{{Name: DefaultSheet, Fields: []FieldRule{
				{Column: "A", Type: TypeString},
			}}},
			wantErr: "fields[0].outputKey: is required",
		},
		{
			name: "validValues on string",
			schemas: []SheetSchema{{Name: DefaultSheet, Fields: []FieldRule{
				{Column: "A", Type: TypeString, ValidValues: []string{"Y", "N"}, OutputKey: "a"},
			}}},
			wantErr: "fields[0].validValues: applies to boolean fields only",
		},
		{
			name: "boolean without validValues",
			schemas: []SheetSchema{{Name: DefaultSheet, Fields: []FieldRule{
				{Column: "A", Type: TypeBoolean, OutputKey: "a"},
			}}},
			wantErr: "validValues: is required for boolean fields",
		},
		{
			name: "boolean values identical",
			schemas: []SheetSchema{{Name: DefaultSheet, Fields: []FieldRule{
				{Column: "A", Type: TypeBoolean, ValidValues: []string{"Y", "Y"}, OutputKey: "a"},
			}}},
			wantErr: "validValues: values must differ",
		},
		{
			name: "allowPreviousMonth on number",
			schemas: []SheetSchema{{Name: DefaultSheet, Fields: []FieldRule{
				{Column: "A", Type: TypeNumber, AllowPreviousMonth: true, OutputKey: "a"},
			}}},
			wantErr: "allowPreviousMonth: applies to date fields only",
		},
		{
			name: "blank column",
			schemas: []SheetSchema{{Name: DefaultSheet, Fields: []FieldRule{
				{Column: "  ", Type: TypeString, OutputKey: "a"},
			}}},
			wantErr: "fields[0].column: is required",
		},
		{
			name:    "no fields",
			schemas: []SheetSchema{{Name: DefaultSheet}},
			wantErr: "fields: at least 1 required",
		},
		{
			name: "duplicate sheet",
			schemas: []SheetSchema{
				{Name: DefaultSheet, Fields: base()},
				{Name: DefaultSheet, Fields: base()},
			},
			wantErr: "declared more than once",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.schemas)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNewRegistry_ReportsEveryProblem(t *testing.T) {
	_, err := NewRegistry([]SheetSchema{{Name: "Other", Fields: []FieldRule{
		{Column: "A", Type: "money", OutputKey: "a"},
		{Column: "B", Type: TypeString, AllowZero: true},
	}}})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"fields[0].type", "fields[1].allowZero", "fields[1].outputKey", "missing Default"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestNewRegistry_CopiesInput(t *testing.T) {
	schemas := Builtin()
	r, err := NewRegistry(schemas)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	schemas[0].Fields[0].Column = "Mutated"
	schemas[0].Fields[3].ValidValues[0] = "Mutated"

	def := r.Default()
	if def.Fields[0].Column != "Name" {
		t.Errorf("registry column changed to %q", def.Fields[0].Column)
	}
	if def.Fields[3].TrueValue() != "Yes" {
		t.Errorf("registry valid value changed to %q", def.Fields[3].TrueValue())
	}
}

const testSchemaYAML = `
sheets:
  - name: Default
    fields:
      - column: Name
        type: string
        required: true
        outputKey: name
      - column: Paid
        type: boolean
        validValues: ["Y", "N"]
        outputKey: paid
  - name: Expenses
    fields:
      - column: Cost
        type: number
        required: true
        allowZero: true
        outputKey: cost
      - column: Spent On
        type: date
        allowPreviousMonth: true
        outputKey: spentOn
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(testSchemaYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := r.Names(); strings.Join(got, ",") != "Default,Expenses" {
		t.Errorf("Names() = %v", got)
	}

	exp := r.Resolve("Expenses")
	if len(exp.Fields) != 2 {
		t.Fatalf("Expenses fields = %d, want 2", len(exp.Fields))
	}
	if exp.Fields[0].Column != "Cost" || exp.Fields[1].Column != "Spent On" {
		t.Errorf("field order not preserved: %v", exp.Columns())
	}
	if !exp.Fields[0].AllowZero || !exp.Fields[1].AllowPreviousMonth {
		t.Errorf("flags not decoded: %+v", exp.Fields)
	}

	paid, _ := r.Default().Field("Paid")
	if paid.TrueValue() != "Y" || paid.FalseValue() != "N" {
		t.Errorf("Paid values = %v", paid.ValidValues)
	}
}

func TestParse_UnknownKey(t *testing.T) {
	data := `
sheets:
  - name: Default
    fields:
      - column: Name
        type: string
        requird: true
        outputKey: name
`
	if _, err := Parse([]byte(data)); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses builtin", func(t *testing.T) {
		r, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if _, ok := r.Lookup("Invoices"); !ok {
			t.Error("builtin Invoices schema missing")
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sheets.yaml")
		if err := os.WriteFile(path, []byte(testSchemaYAML), 0o644); err != nil {
			t.Fatal(err)
		}
		r, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if _, ok := r.Lookup("Expenses"); !ok {
			t.Error("Expenses schema missing")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
