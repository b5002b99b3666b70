package utils

import "strings"

func IsTracingEnabled() bool {
	return GetEnvBool("OTEL_TRACES_ENABLED", false)
}

func OTelServiceName() string {
	serviceName := strings.TrimSpace(GetEnvTrimmed("OTEL_SERVICE_NAME"))
	if serviceName == "" {
		serviceName = "hds-platform"
	}
	return serviceName
}
