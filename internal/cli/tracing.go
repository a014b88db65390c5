package cli

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ormctl"

// newTracerProvider 配置了 zipkin 或者 jaeger 的时候上报，否则使用全局的 provider
func newTracerProvider(opts *RootOptions) (trace.TracerProvider, func(context.Context) error, error) {
	if opts.tracerProvider != nil {
		return opts.tracerProvider, func(context.Context) error { return nil }, nil
	}
	var exporters []sdktrace.SpanExporter
	if opts.Zipkin != "" {
		exp, err := zipkin.New(opts.Zipkin)
		if err != nil {
			return nil, nil, err
		}
		exporters = append(exporters, exp)
	}
	if opts.Jaeger != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(opts.Jaeger)))
		if err != nil {
			return nil, nil, err
		}
		exporters = append(exporters, exp)
	}
	if len(exporters) == 0 {
		return otel.GetTracerProvider(), func(context.Context) error { return nil }, nil
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	}
	for _, exp := range exporters {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	return tp, tp.Shutdown, nil
}
