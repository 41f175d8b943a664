package db

import (
	"context"

	"github.com/jonbodner/proteus"
)

type Submission struct {
	GuildID   int    `prof:"guild_id"`
	ChannelID int    `prof:"channel_id"`
	MessageID int    `prof:"message_id"`
	AuthorID  string `prof:"author_id"`
	Word      string `prof:"word"`
	Points    int    `prof:"points"`
}

// LeaderboardRow is one player's combined total across all their submissions
// in a guild.
type LeaderboardRow struct {
	AuthorID string `prof:"author_id"`
	Points   int    `prof:"points"`
}

var SubmissionDAO SubmissionDAOImpl

type SubmissionDAOImpl struct {
	Upsert func(ctx context.Context, e proteus.ContextExecutor, s Submission) (int64, error) `proq:"q:upsert" prop:"s"`
	Top    func(ctx context.Context, e proteus.ContextQuerier, guildID int, limit int) ([]Submission, error) `proq:"q:top" prop:"guildID,limit"`
	Leaderboard func(ctx context.Context, e proteus.ContextQuerier, guildID int, limit int) ([]LeaderboardRow, error) `proq:"q:leaderboard" prop:"guildID,limit"`
	// FindByID is only intended for testing
	FindByID func(ctx context.Context, e proteus.ContextQuerier, messageID int) (Submission, error) `proq:"q:findByID" prop:"messageID"`
}

func init() {
	m := proteus.MapMapper{
		"upsert": `INSERT INTO submission (guild_id, channel_id, message_id, author_id, word, points)
				   VALUES (:s.GuildID:,:s.ChannelID:,:s.MessageID:,:s.AuthorID:,:s.Word:,:s.Points:)
				   ON CONFLICT(guild_id, channel_id, message_id)
				   DO UPDATE SET word = excluded.word, points = excluded.points`,
		"findByID": `SELECT * FROM submission WHERE message_id = :messageID:`,
		"top":      `SELECT * FROM submission WHERE guild_id = :guildID: ORDER BY points DESC, message_id ASC LIMIT :limit:`,
		"leaderboard": `SELECT author_id, SUM(points) AS points FROM submission
						WHERE guild_id = :guildID:
						GROUP BY author_id
						ORDER BY points DESC
						LIMIT :limit:`,
	}
	err := proteus.ShouldBuild(context.Background(), &SubmissionDAO, proteus.Sqlite, m)
	if err != nil {
		panic(err)
	}
}
