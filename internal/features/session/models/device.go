package models

import (
	"strings"

	"github.com/mssola/useragent"
)

// DeviceInfo что удалось понять об устройстве по User-Agent
type DeviceInfo struct {
	Name    string
	Type    string
	Browser string
	OS      string
}

func ParseUserAgent(raw string) DeviceInfo {
	if strings.TrimSpace(raw) == "" {
		return DeviceInfo{Name: "Unknown device", Type: "desktop"}
	}

	ua := useragent.New(raw)

	info := DeviceInfo{Type: "desktop"}
	switch {
	case strings.Contains(raw, "iPad") || strings.Contains(strings.ToLower(raw), "tablet"):
		info.Type = "tablet"
	case ua.Mobile():
		info.Type = "mobile"
	}

	name, version := ua.Browser()
	if name != "" {
		info.Browser = strings.TrimSpace(name + " " + majorVersion(version))
	}
	info.OS = ua.OS()

	switch {
	case ua.Bot():
		info.Name = "Bot"
	case name != "" && info.OS != "":
		info.Name = name + " on " + shortOS(info.OS)
	case name != "":
		info.Name = name
	default:
		info.Name = "Unknown device"
	}

	return info
}

func majorVersion(v string) string {
	if i := strings.IndexByte(v, '.'); i > 0 {
		return v[:i]
	}
	return v
}

func shortOS(os string) string {
	switch {
	case strings.Contains(os, "Mac OS X"):
		return "macOS"
	case strings.HasPrefix(os, "Windows"):
		return "Windows"
	case strings.HasPrefix(os, "Android"):
		return "Android"
	case strings.Contains(os, "iPhone") || strings.HasPrefix(os, "CPU iPhone"):
		return "iOS"
	case strings.Contains(os, "iPad"):
		return "iPadOS"
	case strings.Contains(os, "Linux"):
		return "Linux"
	}
	return os
}
