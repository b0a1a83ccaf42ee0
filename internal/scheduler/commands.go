package scheduler

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"PriceSentinel/internal/notifier"
)

// HandleCommand processes a chat command and returns the reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Group chats send "/cmd@BotName".
	name, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch name {
	case "/analyze":
		results := s.RunPrimaryNow(ctx)
		if len(results) == 0 {
			return "❌ No analysis available: every target was skipped"
		}
		parts := make([]string, len(results))
		for i := range results {
			parts[i] = notifier.FormatAnalysis(&results[i])
		}
		return strings.Join(parts, "\n")
	case "/watch":
		if len(args) != 2 {
			return "Usage: /watch &lt;item&gt; &lt;platform&gt;"
		}
		item, platform := html.EscapeString(args[0]), html.EscapeString(args[1])
		_, added, err := s.Watchlist.Add(ctx, args[0], args[1])
		if err != nil {
			log.Printf("[ERROR] watch %s/%s: %v", args[0], args[1], err)
			return fmt.Sprintf("❌ Failed to watch: %s", html.EscapeString(err.Error()))
		}
		if !added {
			return fmt.Sprintf("ℹ️ Already watching %s @ %s", item, platform)
		}
		return fmt.Sprintf("✅ Watching %s @ %s", item, platform)
	case "/unwatch":
		if len(args) != 2 {
			return "Usage: /unwatch &lt;item&gt; &lt;platform&gt;"
		}
		item, platform := html.EscapeString(args[0]), html.EscapeString(args[1])
		removed, err := s.Watchlist.Remove(ctx, args[0], args[1])
		if err != nil {
			log.Printf("[ERROR] unwatch %s/%s: %v", args[0], args[1], err)
			return fmt.Sprintf("❌ Failed to unwatch: %s", html.EscapeString(err.Error()))
		}
		if !removed {
			return fmt.Sprintf("ℹ️ %s @ %s is not on the watchlist", item, platform)
		}
		return fmt.Sprintf("🗑 Stopped watching %s @ %s", item, platform)
	case "/watchlist":
		entries, err := s.Watchlist.List(ctx)
		if err != nil {
			return fmt.Sprintf("❌ Failed to load watchlist: %s", html.EscapeString(err.Error()))
		}
		return notifier.FormatWatchlist(entries)
	default:
		return notifier.FormatHelp()
	}
}
