package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yml
var fixturesYAML []byte

// Fixtures is the demo data set. Posts are referenced by their index in Posts,
// users by username.
type Fixtures struct {
	Users         []UserFixture         `yaml:"users"`
	Posts         []PostFixture         `yaml:"posts"`
	Comments      []CommentFixture      `yaml:"comments"`
	Interactions  []InteractionFixture  `yaml:"interactions"`
	Conversations []ConversationFixture `yaml:"conversations"`
	Notifications []NotificationFixture `yaml:"notifications"`
}

type UserFixture struct {
	Username    string `yaml:"username"`
	DisplayName string `yaml:"display_name"`
	Bio         string `yaml:"bio"`
	ASCIIPic    string `yaml:"ascii_pic"`
	Followers   int    `yaml:"followers"`
	Following   int    `yaml:"following"`
}

type PostFixture struct {
	Author     string `yaml:"author"`
	Content    string `yaml:"content"`
	MinutesAgo int    `yaml:"minutes_ago"`
}

type CommentFixture struct {
	Post   int    `yaml:"post"`
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

type InteractionFixture struct {
	Post int    `yaml:"post"`
	User string `yaml:"user"`
	Type string `yaml:"type"`
}

type ConversationFixture struct {
	Between  []string         `yaml:"between"`
	Messages []MessageFixture `yaml:"messages"`
}

type MessageFixture struct {
	Sender  string `yaml:"sender"`
	Content string `yaml:"content"`
}

type NotificationFixture struct {
	User    string `yaml:"user"`
	Type    string `yaml:"type"`
	Actor   string `yaml:"actor"`
	Content string `yaml:"content"`
	Post    *int   `yaml:"post"`
}

// DefaultFixtures parses the embedded demo data.
func DefaultFixtures() (*Fixtures, error) {
	return ParseFixtures(fixturesYAML)
}

// ParseFixtures decodes fixtures and checks every cross reference.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	users := make(map[string]bool, len(f.Users))
	for _, u := range f.Users {
		if u.Username == "" {
			return fmt.Errorf("fixture user without username")
		}
		if users[u.Username] {
			return fmt.Errorf("duplicate fixture user %q", u.Username)
		}
		users[u.Username] = true
	}

	knownUser := func(kind, name string) error {
		if !users[name] {
			return fmt.Errorf("%s references unknown user %q", kind, name)
		}
		return nil
	}
	knownPost := func(kind string, idx int) error {
		if idx < 0 || idx >= len(f.Posts) {
			return fmt.Errorf("%s references unknown post index %d", kind, idx)
		}
		return nil
	}

	for _, p := range f.Posts {
		if err := knownUser("post", p.Author); err != nil {
			return err
		}
	}
	for _, c := range f.Comments {
		if err := knownUser("comment", c.Author); err != nil {
			return err
		}
		if err := knownPost("comment", c.Post); err != nil {
			return err
		}
	}
	seen := make(map[string]bool)
	for _, i := range f.Interactions {
		if err := knownUser("interaction", i.User); err != nil {
			return err
		}
		if err := knownPost("interaction", i.Post); err != nil {
			return err
		}
		key := fmt.Sprintf("%d/%s/%s", i.Post, i.User, i.Type)
		if seen[key] {
			return fmt.Errorf("duplicate interaction %s", key)
		}
		seen[key] = true
	}
	for _, c := range f.Conversations {
		if len(c.Between) != 2 || c.Between[0] == c.Between[1] {
			return fmt.Errorf("conversation needs two distinct users, got %v", c.Between)
		}
		for _, name := range c.Between {
			if err := knownUser("conversation", name); err != nil {
				return err
			}
		}
		for _, m := range c.Messages {
			if m.Sender != c.Between[0] && m.Sender != c.Between[1] {
				return fmt.Errorf("message sender %q is not a participant", m.Sender)
			}
		}
	}
	for _, n := range f.Notifications {
		if err := knownUser("notification", n.User); err != nil {
			return err
		}
		if err := knownUser("notification", n.Actor); err != nil {
			return err
		}
		if n.Post != nil {
			if err := knownPost("notification", *n.Post); err != nil {
				return err
			}
		}
	}
	return nil
}
