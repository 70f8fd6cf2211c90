package model

// FieldSpec describes one catalog field: its kind, whether its contents are
// sensitive (masked in UIs), and the default adopted when a loaded document
// is missing the field or carries it with the wrong structural type.
type FieldSpec struct {
	Name      string
	Kind      Kind
	Sensitive bool

	// DependsOn names the list field this map field is linked to
	// (THINKING_BUDGET_MAP -> THINKING_MODELS). Empty for everything else.
	DependsOn string

	Default func() Value
}

// Catalog is the full set of fields the editor knows about, in display
// order. Loading replaces absent or wrong-typed fields with these defaults;
// downstream code assumes every catalog field is well-typed once loaded.
var Catalog = []FieldSpec{
	{Name: FieldHost, Kind: KindString, Default: func() Value { return StringValue("127.0.0.1") }},
	{Name: FieldPort, Kind: KindNumber, Default: func() Value { return NumberValue(8317) }},
	{Name: FieldDebug, Kind: KindBool, Default: func() Value { return BoolValue(false) }},
	{Name: FieldRequestLog, Kind: KindBool, Default: func() Value { return BoolValue(false) }},
	{Name: FieldRetryCount, Kind: KindNumber, Default: func() Value { return NumberValue(3) }},
	{Name: FieldProxyURL, Kind: KindString, Default: func() Value { return StringValue("") }},
	{Name: FieldAdminPassword, Kind: KindString, Sensitive: true, Default: func() Value { return StringValue("") }},
	{Name: FieldAPIKeys, Kind: KindStringList, Sensitive: true, Default: func() Value { return ListValue(nil) }},
	{Name: FieldProxies, Kind: KindStringList, Default: func() Value { return ListValue(nil) }},
	{Name: FieldAllowedOrigins, Kind: KindStringList, Default: func() Value { return ListValue([]string{"*"}) }},
	{Name: FieldThinkingModels, Kind: KindStringList, Default: func() Value { return ListValue(nil) }},
	{Name: FieldThinkingBudgets, Kind: KindIntMap, DependsOn: FieldThinkingModels, Default: func() Value { return IntMapValue(map[string]int{}) }},
	{Name: FieldQuotaRules, Kind: KindRecordList, Default: func() Value { return RulesValue(nil) }},
}

// Spec looks up a catalog entry by field name.
func Spec(name string) (FieldSpec, bool) {
	for _, s := range Catalog {
		if s.Name == name {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// Sensitive reports whether a catalog field is masked in UIs. Unknown
// fields are treated as not sensitive.
func Sensitive(name string) bool {
	s, ok := Spec(name)
	return ok && s.Sensitive
}
