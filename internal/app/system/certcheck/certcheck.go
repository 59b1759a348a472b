// Package certcheck inspects the TLS certificate a deployment is serving so
// the health endpoint can surface expiry before browsers start refusing it.
package certcheck

import (
	"crypto/tls"
	"net"
	"net/url"
	"strings"
	"time"
)

// Info describes the certificate currently served for a host.
type Info struct {
	DaysLeft int
	IsValid  bool
	Error    string
}

// Check dials the host behind baseURL and reports on its certificate. Non-HTTPS
// URLs and unreachable hosts return IsValid=false with the reason in Error;
// the caller treats the result as informational.
func Check(baseURL string) Info {
	u, err := url.Parse(baseURL)
	if err != nil {
		return Info{Error: "invalid base url"}
	}
	if u.Scheme != "https" {
		return Info{Error: "not an https url"}
	}

	host := u.Host
	if !strings.Contains(host, ":") {
		host += ":443"
	}

	dialer := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := tls.DialWithDialer(dialer, "tcp", host, &tls.Config{
		ServerName: u.Hostname(),
	})
	if err != nil {
		return Info{Error: err.Error()}
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return Info{Error: "no peer certificates"}
	}

	leaf := certs[0]
	now := time.Now()
	if now.Before(leaf.NotBefore) || now.After(leaf.NotAfter) {
		return Info{DaysLeft: 0, IsValid: false, Error: "certificate outside validity window"}
	}

	return Info{
		DaysLeft: int(time.Until(leaf.NotAfter).Hours() / 24),
		IsValid:  true,
	}
}
