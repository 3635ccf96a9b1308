package enums

// SessionState is the coarse state of a browser session's store/language selection.
type SessionState string

const (
	SessionNoStore      SessionState = "no_store"
	SessionStoreDefault SessionState = "store_default"
	SessionOverride     SessionState = "language_override"
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	return string(s)
}
