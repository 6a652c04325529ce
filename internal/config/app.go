package config

const (
	backendPostgres = "postgres"
	backendMemory   = "memory"
)

type AppConfig struct {
	StorageBackendName string `yaml:"storage-backend"`
	ServiceName        string `yaml:"service-name"`
}

func (s *AppConfig) StorageBackend() string {
	if s.StorageBackendName == "" {
		return backendPostgres
	}
	return s.StorageBackendName
}

func (s *AppConfig) MemoryBackend() bool {
	return s.StorageBackend() == backendMemory
}

func (s *AppConfig) Name() string {
	if s.ServiceName == "" {
		return "spendfree"
	}
	return s.ServiceName
}
