package schema

// Builtin returns the schemas compiled into the binary.
// Used when no schema file is configured.
func Builtin() []SheetSchema {
	return []SheetSchema{
		{
			Name: DefaultSheet,
			Fields: []FieldRule{
				{Column: "Name", Type: TypeString, Required: true, OutputKey: "name"},
				{Column: "Amount", Type: TypeNumber, Required: true, OutputKey: "amount"},
				{Column: "Date", Type: TypeDate, Required: true, OutputKey: "date"},
				{Column: "Verified", Type: TypeBoolean, Required: true, ValidValues: []string{"Yes", "No"}, OutputKey: "verified"},
			},
		},
		{
			Name: "Invoices",
			Fields: []FieldRule{
				{Column: "Invoice Number", Type: TypeString, Required: true, OutputKey: "invoiceNumber"},
				{Column: "Invoice Date", Type: TypeDate, Required: true, AllowPreviousMonth: true, OutputKey: "invoiceDate"},
				{Column: "Receipt Date", Type: TypeDate, AllowPreviousMonth: true, OutputKey: "receiptDate"},
				{Column: "Amount", Type: TypeNumber, Required: true, AllowZero: true, OutputKey: "amount"},
			},
		},
	}
}

// MustBuiltinRegistry returns a registry over the built-in schemas.
// Panics if the built-in tables are inconsistent.
func MustBuiltinRegistry() *Registry {
	r, err := NewRegistry(Builtin())
	if err != nil {
		panic("schema: builtin tables: " + err.Error())
	}
	return r
}
