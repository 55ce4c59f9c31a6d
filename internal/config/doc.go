// Package config provides configuration parsing for ghostline.
//
// The configuration is a small JSON record holding the account token, the
// last voice target, an optional presence block, and gateway overrides.
// This package handles loading, saving, and validating it, either from a
// local file or from an S3 object.
//
// # Configuration File Structure
//
//	{
//	  "token": "...",
//	  "last_guild_id": "123456789012345678",
//	  "last_channel_id": "876543210987654321",
//	  "presence": {
//	    "status": "idle",
//	    "activity_type": 1,
//	    "activity_name": "Lo-fi",
//	    "stream_url": "https://twitch.tv/llama"
//	  },
//	  "gateway": {
//	    "url": "wss://gateway.discord.gg/?v=9&encoding=json",
//	    "backoff": "10s",
//	    "probe_url": "https://1.1.1.1",
//	    "probe_timeout": "5s",
//	    "probe_interval": "5s"
//	  },
//	  "logging": {
//	    "level": "warn",
//	    "format": "text"
//	  }
//	}
//
// The GHOSTLINE_TOKEN environment variable takes precedence over the stored
// token and is never written back.
//
// # Usage
//
//	store := config.NewFileStore(config.DefaultPath())
//	cfg, err := store.Load(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Last guild:", cfg.LastGuildID)
package config
