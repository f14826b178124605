// Package platform derives a platform identifier from a stream URL. The
// identifier is a plain lookup key for per-platform rate buckets and
// breakers; behavior is uniform across platforms, only parameters vary.
package platform

import (
	"net/url"
	"strings"
)

// Generic is the reserved identifier for URLs whose platform cannot be
// recognized.
const Generic = "generic"

var hostPlatforms = map[string]string{
	"twitch.tv":         "twitch",
	"youtube.com":       "youtube",
	"youtu.be":          "youtube",
	"kick.com":          "kick",
	"tiktok.com":        "tiktok",
	"bilibili.com":      "bilibili",
	"live.bilibili.com": "bilibili",
	"vimeo.com":         "vimeo",
	"dailymotion.com":   "dailymotion",
	"pluto.tv":          "plutotv",
	"adultswim.com":     "adultswim",
	"bloomberg.com":     "bloomberg",
	"live.douyin.com":   "douyin",
	"huya.com":          "huya",
	"bbc.co.uk":         "bbciplayer",
	"raiplay.it":        "raiplay",
	"atresplayer.com":   "atresplayer",
	"rtve.es":           "rtve",
	"ardmediathek.de":   "ard",
	"zdf.de":            "zdf",
	"mitele.es":         "mitele",
	"abema.tv":          "abematv",
	"bigo.tv":           "bigolive",
}

// Identify maps a stream URL to its platform identifier, falling back to
// Generic for unrecognized or unparseable URLs.
func Identify(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return Generic
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	if p, ok := hostPlatforms[host]; ok {
		return p
	}
	// Match on the registrable part so subdomains like live.bilibili.com or
	// m.twitch.tv resolve to their platform.
	parts := strings.Split(host, ".")
	for i := 1; i < len(parts)-1; i++ {
		if p, ok := hostPlatforms[strings.Join(parts[i:], ".")]; ok {
			return p
		}
	}
	return Generic
}

// ChannelName extracts a human-readable channel or handle guess from the
// URL path, used as a display fallback when a probe returns no metadata.
func ChannelName(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	// Walk backwards past structural path segments like /live or /channel.
	skip := map[string]bool{
		"live": true, "channel": true, "streams": true, "videos": true,
		"directo": true, "directos": true, "player": true, "watch": true,
	}
	for i := len(segs) - 1; i >= 0; i-- {
		s := segs[i]
		if s == "" || skip[strings.ToLower(s)] {
			continue
		}
		return strings.TrimPrefix(s, "@")
	}
	return ""
}
