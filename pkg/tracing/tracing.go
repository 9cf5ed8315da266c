// Package tracing 提供基于OpenTelemetry的分布式追踪
//
// 核心概念：
// - Trace（追踪）：一个完整的请求链路（如一次结算从开始到结束）
// - Span（跨度）：一个操作单元（如调用支付网关捕获）
// - SpanContext：跨服务传递的元数据（TraceID/SpanID/ParentSpanID）
//
// 使用示例：
//
//	shutdown, err := tracing.InitTracer("bookshop-api", "localhost:4317")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer shutdown(context.Background())
//
//	func StartCheckout(ctx context.Context) error {
//	    ctx, span := tracing.StartSpan(ctx, "bookshop-api", "StartCheckout")
//	    defer span.End()
//	    // ... 业务逻辑 ...
//	}
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer 初始化全局Tracer Provider
//
// 参数：
//   - serviceName: 服务名称（在Jaeger UI中显示）
//   - collectorEndpoint: OTLP gRPC端点（如 localhost:4317）
//
// 返回关闭函数（程序退出时调用，确保数据刷新）。
//
// 设计要点：
// 1. 使用OTLP协议，厂商中立（Jaeger/Zipkin/Datadog均可接收）
// 2. 采样策略：AlwaysSample适合开发环境；
//    生产环境建议 sdktrace.TraceIDRatioBased(0.01)
func InitTracer(serviceName, collectorEndpoint string) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1. 创建OTLP gRPC Exporter（默认端口4317）
	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(collectorEndpoint),
		otlptracegrpc.WithInsecure(), // 禁用TLS（生产环境应启用）
	)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP exporter失败: %w", err)
	}

	// 2. 创建Resource（资源属性）
	// service.name是必需属性，用于在Jaeger UI中标识服务
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	// 3. 创建Tracer Provider
	// BatchSpanProcessor批量发送Span（默认每2秒或512个Span发送一次）
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// 4. 设置全局TracerProvider
	// 业务代码无需传递Provider，直接使用otel.Tracer()获取
	otel.SetTracerProvider(tp)

	// 5. 设置全局TextMapPropagator（上下文传播器）
	// W3C Trace Context：标准HTTP Header格式（traceparent、tracestate）
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	// 6. 返回关闭函数
	// 必须在程序退出前调用，否则可能丢失最后一批Span
	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

// StartSpan 创建一个新的Span（便捷函数）
//
// 命名规范：使用操作名（StartCheckout、CapturePayment），
// 动态值放到属性里（span.SetAttributes）而不是Span名。
//
// 必须使用返回的ctx调用下游函数，否则无法构建调用树。
func StartSpan(ctx context.Context, tracerName, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	return tracer.Start(ctx, spanName)
}

// ExtractTraceID 从Context提取TraceID（用于关联日志）
//
//	traceID := tracing.ExtractTraceID(ctx)
//	log.Printf("TraceID=%s, 结算完成, OrderNo=%s", traceID, orderNo)
func ExtractTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// ExtractSpanID 从Context提取SpanID
func ExtractSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().SpanID().String()
}
