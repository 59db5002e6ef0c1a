package patch

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}

// Store is the persistence collaborator boundary. Callers attach to a
// backend, save and load patches by ID, and detach when done. The store
// decides its own encoding; the container does not define an on-disk
// layout.
type Store interface {
	// Attach connects the store to the backend described by config,
	// creating the data directory if needed. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent. After Detach,
	// operations return ErrStoreDetached.
	Detach() error

	// Save writes the slots of p resolved by sel. When id is empty a new
	// UUID v7 is generated; the ID actually used is returned. A selector
	// that resolves to nothing is a no-op and does not create storage.
	Save(id string, p *Patch, sel Selector) (string, error)

	// Load returns a patch populated with the resolved slots available
	// under id. An unknown id yields an empty patch, not an error.
	Load(id string, sel Selector) (*Patch, error)

	// List returns the IDs of every stored patch.
	List() ([]string, error)

	// Delete removes a stored patch. Returns ErrPatchNotFound if the id
	// is unknown.
	Delete(id string) error
}
