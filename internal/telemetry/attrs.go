// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import "go.opentelemetry.io/otel/attribute"

func attrKind(kind string) attribute.KeyValue {
	return attribute.String("kind", kind)
}

func attrOutcome(outcome string) attribute.KeyValue {
	return attribute.String("outcome", outcome)
}
