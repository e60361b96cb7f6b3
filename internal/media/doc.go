package media

// Package media wraps the yt-dlp based download/convert engine (via
// github.com/lrstanley/go-ytdlp, with github.com/ytget/ytdlp/v2 for fast
// flat playlist listing) behind small Prober and Fetcher interfaces so
// the job core stays testable without network access.
