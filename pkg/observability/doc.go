/*
Package observability turns controller lifecycle hooks into Prometheus metrics
and structured log lines.

Both helpers return domain.LifecycleHooks, so they combine with Merge:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := metrics.Hooks().Merge(observability.LoggingHooks(logger))
	ctrl, _ := easel.New(doc, easel.WithLifecycleHooks(hooks))
*/
package observability
