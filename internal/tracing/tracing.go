package tracing

import (
	"io"

	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// Init installs the global Jaeger tracer. Callers close the returned closer
// on shutdown to flush buffered spans.
func Init(serviceName string) (io.Closer, error) {
	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
	}

	closer, err := cfg.InitGlobalTracer(serviceName)
	if err != nil {
		return nil, errors.Wrap(err, "cannot init tracing")
	}
	return closer, nil
}
