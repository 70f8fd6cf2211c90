package model

// Field names as stored in the gateway configuration document.
const (
	FieldHost            = "HOST"
	FieldPort            = "PORT"
	FieldDebug           = "DEBUG"
	FieldRequestLog      = "REQUEST_LOG"
	FieldRetryCount      = "RETRY_COUNT"
	FieldProxyURL        = "PROXY_URL"
	FieldAdminPassword   = "ADMIN_PASSWORD"
	FieldAPIKeys         = "API_KEYS"
	FieldProxies         = "PROXIES"
	FieldAllowedOrigins  = "ALLOWED_ORIGINS"
	FieldThinkingModels  = "THINKING_MODELS"
	FieldThinkingBudgets = "THINKING_BUDGET_MAP"
	FieldQuotaRules      = "QUOTA_RULES"
)

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindStringList
	KindRecordList
	KindIntMap

	// KindRaw holds a field the catalog does not know about. It is kept
	// verbatim and round-tripped on serialize; the remote gateway may be
	// newer than this editor.
	KindRaw
)

// QuotaRule is one entry of QUOTA_RULES: alert when usage in a category
// crosses its threshold.
type QuotaRule struct {
	Category  string `json:"category" yaml:"category"`
	Threshold int    `json:"threshold" yaml:"threshold"`
}

// Value is a single field's typed contents. Exactly one of the payload
// members is meaningful, selected by Kind.
type Value struct {
	Kind Kind

	Str    string
	Num    int
	Bool   bool
	List   []string
	Rules  []QuotaRule
	IntMap map[string]int
	Raw    any
}

func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }
func NumberValue(n int) Value     { return Value{Kind: KindNumber, Num: n} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func ListValue(ss []string) Value { return Value{Kind: KindStringList, List: ss} }
func RulesValue(rs []QuotaRule) Value {
	return Value{Kind: KindRecordList, Rules: rs}
}
func IntMapValue(m map[string]int) Value { return Value{Kind: KindIntMap, IntMap: m} }
func RawValue(v any) Value               { return Value{Kind: KindRaw, Raw: v} }

// Clone deep-copies the value so callers can hand it out without aliasing
// the document's backing slices/maps.
func (v Value) Clone() Value {
	out := v
	if v.List != nil {
		out.List = append([]string(nil), v.List...)
	}
	if v.Rules != nil {
		out.Rules = append([]QuotaRule(nil), v.Rules...)
	}
	if v.IntMap != nil {
		out.IntMap = make(map[string]int, len(v.IntMap))
		for k, n := range v.IntMap {
			out.IntMap[k] = n
		}
	}
	return out
}

// Document is the configuration document: field name -> typed value.
// Field names are unique; iteration order is catalog order followed by
// unknown fields in first-seen order.
type Document struct {
	values map[string]Value
	order  []string
}

// New returns a document populated with every catalog field's default.
func New() *Document {
	d := &Document{values: map[string]Value{}}
	for _, spec := range Catalog {
		d.values[spec.Name] = spec.Default()
		d.order = append(d.order, spec.Name)
	}
	return d
}

func (d *Document) Get(name string) (Value, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Set stores v under name. Setting an unknown name registers it at the end
// of the iteration order.
func (d *Document) Set(name string, v Value) {
	if _, ok := d.values[name]; !ok {
		d.order = append(d.order, name)
	}
	d.values[name] = v
}

func (d *Document) Names() []string {
	return append([]string(nil), d.order...)
}

// Clone deep-copies the document.
func (d *Document) Clone() *Document {
	out := &Document{
		values: make(map[string]Value, len(d.values)),
		order:  append([]string(nil), d.order...),
	}
	for name, v := range d.values {
		out.values[name] = v.Clone()
	}
	return out
}
