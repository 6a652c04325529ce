package config

type ServerConfig struct {
	ListenAddr          string `yaml:"addr"`
	ReadTimeoutSeconds  int64  `yaml:"read-timeout-seconds"`
	WriteTimeoutSeconds int64  `yaml:"write-timeout-seconds"`
}

func (s *ServerConfig) Addr() string {
	if s.ListenAddr == "" {
		return ":8080"
	}
	return s.ListenAddr
}

func (s *ServerConfig) ReadTimeout() int64 {
	if s.ReadTimeoutSeconds == 0 {
		return 10
	}
	return s.ReadTimeoutSeconds
}

func (s *ServerConfig) WriteTimeout() int64 {
	if s.WriteTimeoutSeconds == 0 {
		return 15
	}
	return s.WriteTimeoutSeconds
}
