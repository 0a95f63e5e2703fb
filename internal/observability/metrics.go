package observability

const (
	MUsecaseRequests         MetricKey = "usecase_requests_total"
	MUsecaseDuration         MetricKey = "usecase_duration_seconds"
	MHTTPRequests            MetricKey = "http_requests_total"
	MHTTPRequestDuration     MetricKey = "http_request_duration_seconds"
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"
	MSideEffectFailures      MetricKey = "side_effect_failures_total"
	MRateLimited             MetricKey = "order_rate_limited_total"
	MOutboxEvents            MetricKey = "outbox_events_total"
)
