package tools

import (
	"fmt"
	"net"
	"strconv"
)

func FullURL(baseURL, path string) string {
	if baseURL == "" {
		return ""
	}
	if baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	if path == "" {
		return baseURL
	}
	if path[0] == '/' {
		path = path[1:]
	}
	return baseURL + "/" + path
}

// PublicImageURL derives the externally reachable URL for a saved image.
// A wildcard bind address without an explicit public base yields no URL.
func PublicImageURL(publicBase, host string, port int, fileName string) (string, bool) {
	if fileName == "" {
		return "", false
	}
	if publicBase != "" {
		return FullURL(publicBase, "images/"+fileName), true
	}
	if IsWildcardHost(host) {
		return "", false
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	return fmt.Sprintf("http://%s/images/%s", addr, fileName), true
}

func IsWildcardHost(host string) bool {
	switch host {
	case "0.0.0.0", "::", "[::]", "":
		return true
	}
	return false
}
