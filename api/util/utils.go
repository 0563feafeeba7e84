package util

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetIPFromContext extracts the caller's IP from proxy headers or the socket
func GetIPFromContext(c *gin.Context) (*string, error) {
	ip := c.Request.Header.Get("X-Real-IP")
	if len(ip) > 0 {
		return &ip, nil
	}

	ip = c.Request.Header.Get("X-Forwarded-For")
	ipList := strings.Split(ip, ",")
	if len(ipList[0]) > 0 {
		return &ipList[0], nil
	}

	// no proxy headers present, fall back to the socket address
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return nil, err
	}
	return &ip, nil
}
