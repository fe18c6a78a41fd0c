package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	noWatch bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithoutWatcher disables the filesystem watchers. Useful when the
// notebooks live on storage where inotify is unreliable.
func WithoutWatcher() Option {
	return func(a *application) {
		a.noWatch = true
	}
}
