package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// buildDSN renders a postgres:// URL. The password is URL-escaped so values
// like "pa:ss@word" keep the URL structure intact, and JoinHostPort brackets
// IPv6 hosts.
func buildDSN(d DatabaseConfig) string {
	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		d.User,
		url.QueryEscape(d.Password),
		hostPort,
		d.Name,
		d.SSLMode,
	)
}
