package db_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"testing"

	"github.com/lexitally/lexitally/src/lexitally/db"
	"github.com/stretchr/testify/assert"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

func TestMain(m *testing.M) {
	dbPath := fmt.Sprintf(path.Join("%s", "lexitally-test.db"), os.TempDir())

	// delete any existing database
	err := os.Truncate(dbPath, 0)

	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("could not truncate database file %s: %v", dbPath, err)
	}

	// open DB and load schema
	DB, err = sql.Open("sqlite3", dbPath)
	defer DB.Close()

	err = db.BootstrapDB(DB)
	if err != nil {
		log.Fatalf("could not open database %s: %v", dbPath, err)
	}

	m.Run()

	os.Remove(dbPath)
}

func TestSubmissionDAO_Upsert(t *testing.T) {
	ctx := context.Background()

	rows, err := db.SubmissionDAO.Upsert(ctx, DB, db.Submission{1, 1, 1, "player#3414", "test", 7})

	assert.NoError(t, err)
	assert.EqualValues(t, 1, rows)

	sub, err := db.SubmissionDAO.FindByID(ctx, DB, 1)
	assert.NoError(t, err)
	assert.EqualValues(t, "test", sub.Word)
	assert.EqualValues(t, 7, sub.Points)
	assert.EqualValues(t, "player#3414", sub.AuthorID)

	_, err = db.SubmissionDAO.Upsert(ctx, DB, db.Submission{1, 1, 1, "player#3414", "queue", 6})
	assert.NoError(t, err)

	sub, err = db.SubmissionDAO.FindByID(ctx, DB, 1)
	assert.NoError(t, err)
	assert.EqualValues(t, "queue", sub.Word)
	assert.EqualValues(t, 6, sub.Points)
}

func TestSubmissionDAO_Top(t *testing.T) {
	ctx := context.Background()

	db.SubmissionDAO.Upsert(ctx, DB, db.Submission{10, 1, 101, "a#1", "xylophone", 16})
	db.SubmissionDAO.Upsert(ctx, DB, db.Submission{10, 1, 102, "b#2", "area", 5})
	db.SubmissionDAO.Upsert(ctx, DB, db.Submission{10, 1, 103, "a#1", "rhythm", 12})

	// should not hit the below rows since filtering by guild_id
	db.SubmissionDAO.Upsert(ctx, DB, db.Submission{11, 2, 201, "c#3", "zzzzzzzzzz", 20})

	top, err := db.SubmissionDAO.Top(ctx, DB, 10, 2)
	assert.NoError(t, err)
	assert.Len(t, top, 2)
	assert.Equal(t, "xylophone", top[0].Word)
	assert.Equal(t, "rhythm", top[1].Word)
}

func TestSubmissionDAO_Leaderboard(t *testing.T) {
	ctx := context.Background()

	db.SubmissionDAO.Upsert(ctx, DB, db.Submission{20, 1, 301, "a#1", "xylophone", 16})
	db.SubmissionDAO.Upsert(ctx, DB, db.Submission{20, 1, 302, "b#2", "area", 5})
	db.SubmissionDAO.Upsert(ctx, DB, db.Submission{20, 1, 303, "a#1", "rhythm", 12})

	board, err := db.SubmissionDAO.Leaderboard(ctx, DB, 20, 10)
	assert.NoError(t, err)
	assert.Len(t, board, 2)
	assert.Equal(t, db.LeaderboardRow{"a#1", 28}, board[0])
	assert.Equal(t, db.LeaderboardRow{"b#2", 5}, board[1])
}

func TestGuildConfigDAO_Upsert(t *testing.T) {
	ctx := context.Background()

	_, err := db.GuildConfigDAO.Upsert(ctx, DB, db.GuildConfig{1, 12, "pos", "neg"})
	assert.NoError(t, err)

	conf, err := db.GuildConfigDAO.FindByID(ctx, DB, 1)
	assert.NoError(t, err)
	assert.EqualValues(t, db.GuildConfig{1, 12, "pos", "neg"}, conf)

	_, err = db.GuildConfigDAO.Upsert(ctx, DB, db.GuildConfig{1, 4, "pos1", "neg1"})
	assert.NoError(t, err)

	conf, err = db.GuildConfigDAO.FindByID(ctx, DB, 1)
	assert.NoError(t, err)
	assert.EqualValues(t, db.GuildConfig{1, 4, "pos1", "neg1"}, conf)
}

func TestChannelConfigDAO_Upsert(t *testing.T) {
	ctx := context.Background()

	_, err := db.ChannelConfigDAO.Upsert(ctx, DB, 1, 12)
	assert.NoError(t, err)

	conf, err := db.ChannelConfigDAO.FindByID(ctx, DB, 1)
	assert.NoError(t, err)
	assert.EqualValues(t, db.ChannelConfig{1, 12}, conf)

	_, err = db.ChannelConfigDAO.Upsert(ctx, DB, 1, 4)
	assert.NoError(t, err)

	conf, err = db.ChannelConfigDAO.FindByID(ctx, DB, 1)
	assert.NoError(t, err)
	assert.EqualValues(t, db.ChannelConfig{1, 4}, conf)
}

func TestLookupFlags(t *testing.T) {
	ctx := context.Background()

	_, err := db.ChannelConfigDAO.Upsert(ctx, DB, 31, 3)
	assert.NoError(t, err)
	_, err = db.GuildConfigDAO.Upsert(ctx, DB, db.GuildConfig{GuildID: 32, Flags: 4})
	assert.NoError(t, err)

	flags, err := db.LookupFlags(ctx, DB, 32, 31)
	assert.NoError(t, err)

	assert.EqualValues(t, 7, flags)
	assert.True(t, flags.ScoreWords())
	assert.True(t, flags.ReactToScore())
	assert.True(t, flags.ReplyWithScore())
	assert.False(t, flags.ExplainInvalid())
	assert.False(t, flags.ServeLeaderboard())
}

func TestConfigFlagString(t *testing.T) {
	assert.Equal(t, "(none)", db.ConfigFlag(0).String())
	assert.Equal(t, "ScoreWords, ReplyWithScore", (db.ConfigScoreWords | db.ConfigReplyWithScore).String())
}

func TestSubmissionHashDAO(t *testing.T) {
	ctx := context.Background()

	wordHash := [16]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	otherHash := [16]byte{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}

	_, err := db.SubmissionHashDAO.Upsert(ctx, DB, 40, 143, wordHash[:])
	assert.NoError(t, err)

	mid, err := db.SubmissionHashDAO.FindByMD5(ctx, DB, 40, wordHash[:])
	assert.NoError(t, err)
	assert.EqualValues(t, 143, mid)

	mid, err = db.SubmissionHashDAO.FindByMD5(ctx, DB, 40, otherHash[:])
	assert.NoError(t, err)
	assert.EqualValues(t, 0, mid)

	// hashes are scoped per guild
	mid, err = db.SubmissionHashDAO.FindByMD5(ctx, DB, 41, wordHash[:])
	assert.NoError(t, err)
	assert.EqualValues(t, 0, mid)
}

func TestCheckHash(t *testing.T) {
	ctx := context.Background()

	hash := [16]byte{9, 9, 9, 9, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}

	err := db.CheckHash(ctx, DB, 50, 200, hash)
	assert.NoError(t, err)

	// same message can re-check its own hash
	err = db.CheckHash(ctx, DB, 50, 200, hash)
	assert.NoError(t, err)

	err = db.CheckHash(ctx, DB, 50, 201, hash)
	assert.Error(t, err)
	var dup db.ErrDuplicateWord
	assert.True(t, errors.As(err, &dup))
	assert.EqualValues(t, 200, dup.MessageID)
}

func TestCheckHashAcrossGuilds(t *testing.T) {
	ctx := context.Background()

	hash := [16]byte{8, 8, 8, 8, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}

	err := db.CheckHash(ctx, DB, 60, 300, hash)
	assert.NoError(t, err)

	// the same word stays playable in a different guild
	err = db.CheckHash(ctx, DB, 61, 301, hash)
	assert.NoError(t, err)

	// but not twice within either guild
	err = db.CheckHash(ctx, DB, 60, 302, hash)
	assert.Error(t, err)
	err = db.CheckHash(ctx, DB, 61, 303, hash)
	assert.Error(t, err)
}
