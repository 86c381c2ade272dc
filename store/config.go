package store

import "time"

const DefaultWebsiteURL = "https://abdo-omran2206.github.io/Movie-Night"

// AppConfig is the latest row of the remote app_config table. It is always
// replaced as a whole.
type AppConfig struct {
	BaseURL                string    `json:"base_url" bson:"base_url"`
	MovieSlug              string    `json:"movie_slug" bson:"movie_slug"`
	ActorSlug              string    `json:"actor_slug" bson:"actor_slug"`
	MinAppVersion          string    `json:"min_app_version" bson:"min_app_version"`
	LatestAppVersion       string    `json:"latest_app_version" bson:"latest_app_version"`
	ForceStop              bool      `json:"force_stop" bson:"force_stop"`
	ForceMessage           string    `json:"force_message" bson:"force_message"`
	AppLinkUpdate          string    `json:"app_link_update" bson:"app_link_update"`
	ShareTextTemplateMovie string    `json:"share_text_template_movie" bson:"share_text_template_movie"`
	ShareTextTemplateActor string    `json:"share_text_template_actor" bson:"share_text_template_actor"`
	UpdatedAt              time.Time `json:"updated_at" bson:"updated_at"`
}

func (c *AppConfig) WebsiteURL() string {
	if c == nil || c.BaseURL == "" {
		return DefaultWebsiteURL
	}

	return c.BaseURL
}
