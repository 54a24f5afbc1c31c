package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type OriginSuite struct {
	suite.Suite
}

func TestOriginSuite(t *testing.T) {
	suite.Run(t, new(OriginSuite))
}

func (s *OriginSuite) TestUserAgentParsing() {
	s.Run("empty user agent keeps only the ip", func() {
		o := NewOrigin(" 203.0.113.7 ", "")
		s.Equal("203.0.113.7", o.IP)
		s.Empty(o.Browser)
		s.False(o.Mobile)
	})

	s.Run("chrome on desktop", func() {
		o := NewOrigin("", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		s.Equal("Chrome 120", o.Browser)
		s.Contains(o.OS, "Mac OS X")
		s.False(o.Mobile)
	})

	s.Run("safari on iphone is mobile", func() {
		o := NewOrigin("", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
		s.True(o.Mobile)
		s.Contains(o.Browser, "Safari")
	})

	s.Run("oversized user agents are truncated", func() {
		o := NewOrigin("", strings.Repeat("a", 2000))
		s.Len(o.UserAgent, maxUserAgentLen)
	})
}
