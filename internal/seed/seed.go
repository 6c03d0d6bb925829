// Package seed loads demo data into the database for development and demos.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"socialvim/internal/middleware"
	"socialvim/internal/models"
	"socialvim/internal/repository"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	// Clean wipes existing rows first; without it a non-empty database is left alone.
	Clean     bool
	FakeUsers int
	FakePosts int
	// RandSeed makes the fake data reproducible. Zero picks a random seed.
	RandSeed int64
	// Fixtures overrides the embedded demo data.
	Fixtures *Fixtures
}

// Result reports what a seeding run wrote.
type Result struct {
	Skipped       bool `json:"skipped"`
	Users         int  `json:"users"`
	Posts         int  `json:"posts"`
	Comments      int  `json:"comments"`
	Interactions  int  `json:"interactions"`
	Conversations int  `json:"conversations"`
	Messages      int  `json:"messages"`
	Notifications int  `json:"notifications"`
}

// tables in child-to-parent order for deletion.
var wipeOrder = []interface{}{
	&models.Notification{},
	&models.Message{},
	&models.Conversation{},
	&models.Comment{},
	&models.PostInteraction{},
	&models.Post{},
	&models.UserSettings{},
	&models.User{},
}

// Seed writes the demo data set in a single transaction. When users already
// exist and Clean is false the run is skipped. Any failure rolls everything
// back and is reported as a SEED_FAILED AppError.
//
// The emptiness check and the inserts are not serialized against each other,
// so two concurrent runs on an empty database can both proceed; the second
// then fails on the username unique index and rolls back.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	fixtures := opts.Fixtures
	if fixtures == nil {
		var err error
		if fixtures, err = DefaultFixtures(); err != nil {
			return nil, models.NewSeedError(err)
		}
	}

	var existing int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&existing).Error; err != nil {
		return nil, models.NewSeedError(err)
	}
	if existing > 0 && !opts.Clean {
		middleware.Logger.InfoContext(ctx, "database already seeded, skipping", slog.Int64("users", existing))
		return &Result{Skipped: true}, nil
	}

	res := &Result{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Clean {
			if err := wipe(tx); err != nil {
				return fmt.Errorf("clean: %w", err)
			}
		}
		if err := loadFixtures(ctx, tx, fixtures, res); err != nil {
			return err
		}
		return loadFake(ctx, tx, opts, res)
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "seeding failed", slog.String("error", err.Error()))
		return nil, models.NewSeedError(err)
	}

	middleware.Logger.InfoContext(ctx, "database seeded",
		slog.Int("users", res.Users),
		slog.Int("posts", res.Posts),
		slog.Int("conversations", res.Conversations),
		slog.Int("notifications", res.Notifications),
	)
	return res, nil
}

func wipe(tx *gorm.DB) error {
	for _, model := range wipeOrder {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func loadFixtures(ctx context.Context, tx *gorm.DB, f *Fixtures, res *Result) error {
	now := time.Now().UTC()

	users := make(map[string]*models.User, len(f.Users))
	for _, uf := range f.Users {
		u := &models.User{
			Username:    uf.Username,
			DisplayName: uf.DisplayName,
			Bio:         uf.Bio,
			ASCIIPic:    uf.ASCIIPic,
			Followers:   uf.Followers,
			Following:   uf.Following,
		}
		for _, p := range f.Posts {
			if p.Author == uf.Username {
				u.PostsCount++
			}
		}
		if err := tx.Omit("Settings", "Posts").Create(u).Error; err != nil {
			return fmt.Errorf("user %s: %w", uf.Username, err)
		}
		settings := models.DefaultSettings(u.ID)
		if err := tx.Create(&settings).Error; err != nil {
			return fmt.Errorf("settings for %s: %w", uf.Username, err)
		}
		users[uf.Username] = u
		res.Users++
	}

	posts := make([]*models.Post, 0, len(f.Posts))
	for _, pf := range f.Posts {
		author := users[pf.Author]
		p := &models.Post{
			AuthorID:     author.ID,
			AuthorHandle: author.Username,
			Content:      pf.Content,
			CreatedAt:    now.Add(-time.Duration(pf.MinutesAgo) * time.Minute),
		}
		for _, i := range f.Interactions {
			if i.Post != len(posts) {
				continue
			}
			switch i.Type {
			case models.InteractionLike:
				p.LikesCount++
			case models.InteractionRepost:
				p.RepostsCount++
			}
		}
		for _, c := range f.Comments {
			if c.Post == len(posts) {
				p.CommentsCount++
			}
		}
		if err := tx.Omit("Comments", "Interactions").Create(p).Error; err != nil {
			return fmt.Errorf("post %d: %w", len(posts), err)
		}
		posts = append(posts, p)
		res.Posts++
	}

	for i, cf := range f.Comments {
		author := users[cf.Author]
		c := &models.Comment{
			PostID:    posts[cf.Post].ID,
			UserID:    author.ID,
			Username:  author.Username,
			Text:      cf.Text,
			CreatedAt: posts[cf.Post].CreatedAt.Add(time.Duration(i+1) * time.Minute),
		}
		if err := tx.Omit("User").Create(c).Error; err != nil {
			return fmt.Errorf("comment %d: %w", i, err)
		}
		res.Comments++
	}

	for _, inf := range f.Interactions {
		pi := &models.PostInteraction{
			PostID:          posts[inf.Post].ID,
			UserID:          users[inf.User].ID,
			InteractionType: inf.Type,
		}
		if err := tx.Omit("User").Create(pi).Error; err != nil {
			return fmt.Errorf("interaction %s on post %d: %w", inf.Type, inf.Post, err)
		}
		res.Interactions++
	}

	for ci, cf := range f.Conversations {
		lo, hi := models.CanonicalPair(users[cf.Between[0]].ID, users[cf.Between[1]].ID)
		started := now.Add(-time.Duration(len(cf.Messages)+1) * time.Hour)
		conv := &models.Conversation{
			ParticipantAID: lo,
			ParticipantBID: hi,
			LastMessageAt:  started,
			CreatedAt:      started,
		}
		for mi, mf := range cf.Messages {
			at := started.Add(time.Duration(mi+1) * time.Hour)
			conv.LastMessagePreview = models.MessagePreview(mf.Content)
			conv.LastMessageAt = at
		}
		if err := tx.Omit("ParticipantA", "ParticipantB", "Messages").Create(conv).Error; err != nil {
			return fmt.Errorf("conversation %d: %w", ci, err)
		}
		res.Conversations++

		for mi, mf := range cf.Messages {
			sender := users[mf.Sender]
			m := &models.Message{
				ConversationID: conv.ID,
				SenderID:       sender.ID,
				SenderHandle:   sender.Username,
				Content:        mf.Content,
				CreatedAt:      started.Add(time.Duration(mi+1) * time.Hour),
			}
			if err := tx.Omit("Sender").Create(m).Error; err != nil {
				return fmt.Errorf("message %d in conversation %d: %w", mi, ci, err)
			}
			res.Messages++
		}
	}

	notifications := repository.NewNotificationRepository(tx)
	for ni, nf := range f.Notifications {
		actor := users[nf.Actor]
		n := &models.Notification{
			UserID:      users[nf.User].ID,
			Type:        nf.Type,
			ActorID:     actor.ID,
			ActorHandle: actor.Username,
			Content:     nf.Content,
			CreatedAt:   now.Add(-time.Duration(ni+1) * 10 * time.Minute),
		}
		if nf.Post != nil {
			id := posts[*nf.Post].ID
			n.PostID = &id
		}
		if err := notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("notification %d: %w", ni, err)
		}
		res.Notifications++
	}

	return nil
}

func loadFake(ctx context.Context, tx *gorm.DB, opts Options, res *Result) error {
	if opts.FakeUsers <= 0 && opts.FakePosts <= 0 {
		return nil
	}

	factory := NewFactory(tx, opts.RandSeed)
	var authors []*models.User
	for i := 0; i < opts.FakeUsers; i++ {
		u, err := factory.CreateUser(ctx)
		if err != nil {
			return fmt.Errorf("fake user %d: %w", i, err)
		}
		authors = append(authors, u)
		res.Users++
	}

	if len(authors) == 0 && opts.FakePosts > 0 {
		if err := tx.Find(&authors).Error; err != nil {
			return err
		}
		if len(authors) == 0 {
			return fmt.Errorf("fake posts need at least one user")
		}
	}

	for i := 0; i < opts.FakePosts; i++ {
		author := authors[factory.Pick(len(authors))]
		if _, err := factory.CreatePost(ctx, author); err != nil {
			return fmt.Errorf("fake post %d: %w", i, err)
		}
		res.Posts++
	}
	return nil
}
