// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics registers the service's Prometheus collectors and serves
them at GET /metrics.

  - petitions_guard_decisions_total{operation, verdict}
  - petitions_db_tx_retries_total
  - petitions_search_matches
  - petitions_http_requests_total{method, status}
  - petitions_http_request_duration_seconds{method}
  - petitions_images_written_bytes_total

Collectors are registered with the default registry at init.
*/
package metrics
