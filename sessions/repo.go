package sessions

// Repo persists the bearer credential pair between runs.
// Load returns errors.ErrNoCredentials when nothing has been saved.
type Repo interface {
	Load() (*Credentials, error)
	Save(creds *Credentials) error
	Delete() error
}
