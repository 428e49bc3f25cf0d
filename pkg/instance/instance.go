package instance

import "github.com/angelmondragon/salesdesk-backend/pkg/env"

// GetID returns an identifier for this process: SALES_INSTANCE_ID, the
// platform dyno name, the container hostname, or "local".
func GetID() string {
	return env.First("local", "SALES_INSTANCE_ID", "DYNO", "HOSTNAME")
}
