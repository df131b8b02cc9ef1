package resolver

// Kind discriminates which half of the expr grammar a Reference is.
type Kind int

const (
	KindService Kind = iota
	KindEnv
)

// Property is the parsed "property" production of a service-ref: one of
// the bare names (ip, port, host) or one of the two bracketed forms
// (endpoint[NAME], env[NAME]), in which case Arg holds NAME.
type Property struct {
	Name string
	Arg  string
}

const (
	PropertyIP       = "ip"
	PropertyPort     = "port"
	PropertyHost     = "host"
	PropertyEndpoint = "endpoint"
	PropertyEnv      = "env"
)

// Reference is one parsed "${...}" occurrence.
type Reference struct {
	Kind   Kind
	Raw    string // full "${...}" source text, including the braces
	Offset int    // byte offset of the leading "$" in the enclosing string

	// Populated when Kind == KindService.
	ServiceName string
	Property    Property
	PropOffset  int // byte offset of the "." before Property, for precise errors

	// Populated when Kind == KindEnv.
	EnvName    string
	EnvDefault string
	HasDefault bool
}

// Mode governs how an absent environment reference without a default is
// handled.
type Mode int

const (
	// ModeStrict fails resolution when an env-ref has no default and the
	// variable is unset.
	ModeStrict Mode = iota
	// ModeLax substitutes the empty string in that case instead.
	ModeLax
)

// ServiceInfo is the subset of live registry state a service-ref can draw
// on. Callers (normally the orchestrator, backed by internal/registry)
// build this from a ServiceEntry.
type ServiceInfo struct {
	IP        string
	Port      int
	Host      string
	Endpoints map[string]string
	Env       map[string]string
}

// Lookup supplies the live state a Resolve call is evaluated against.
type Lookup interface {
	LookupService(name string) (ServiceInfo, bool)
	LookupEnv(name string) (string, bool)
}

// ObservedRef records one (service, property) pair a resolution observed,
// so the orchestrator can add an implicit dependency edge from the
// consumer of the reference to the service it names.
type ObservedRef struct {
	Service  string
	Property string
}

// Result is the outcome of resolving every reference in one source string.
type Result struct {
	// Value is src with every reference substituted.
	Value string
	// Observed lists every service-ref encountered, in source order.
	Observed []ObservedRef
}
