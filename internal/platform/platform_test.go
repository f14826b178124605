package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentify(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.twitch.tv/somechannel", "twitch"},
		{"https://m.twitch.tv/somechannel", "twitch"},
		{"https://www.youtube.com/@handle", "youtube"},
		{"https://youtube.com/watch?v=abc123", "youtube"},
		{"https://kick.com/streamer", "kick"},
		{"https://www.tiktok.com/@user/live", "tiktok"},
		{"https://live.bilibili.com/12345", "bilibili"},
		{"https://live.douyin.com/98765", "douyin"},
		{"https://www.bbc.co.uk/iplayer/live/bbc_one", "bbciplayer"},
		{"https://zdf.de/live-tv", "zdf"},
		{"https://some.random.site/stream", Generic},
		{"not a url at all", Generic},
		{"", Generic},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Identify(tc.url), "url %q", tc.url)
	}
}

func TestChannelName(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.twitch.tv/somechannel", "somechannel"},
		{"https://www.tiktok.com/@user/live", "user"},
		{"https://www.youtube.com/@handle", "handle"},
		{"https://kick.com/streamer/", "streamer"},
		{"https://zdf.de/live-tv", "live-tv"},
		{"https://example.com/", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ChannelName(tc.url), "url %q", tc.url)
	}
}
