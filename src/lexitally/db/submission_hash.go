package db

import (
	"context"
	"fmt"

	"github.com/jonbodner/proteus"
)

var SubmissionHashDAO SubmissionHashDAOImpl

type SubmissionHashDAOImpl struct {
	Upsert    func(ctx context.Context, e proteus.ContextExecutor, gid int, mid int, md5Sum []byte) (int64, error) `proq:"q:upsert" prop:"gid,mid,md5Sum"`
	FindByMD5 func(ctx context.Context, e proteus.ContextQuerier, gid int, md5Sum []byte) (int64, error)           `proq:"q:findByMD5" prop:"gid,md5Sum"`
}

func init() {
	m := proteus.MapMapper{
		"upsert": `INSERT INTO submission_hash (message_id, guild_id, md5_sum) VALUES (:mid:, :gid:, :md5Sum:)
				   ON CONFLICT (message_id)
				   DO UPDATE SET guild_id = excluded.guild_id, md5_sum = excluded.md5_sum`,
		"findByMD5": `SELECT message_id FROM submission_hash WHERE guild_id = :gid: AND md5_sum = :md5Sum:`,
	}
	err := proteus.ShouldBuild(context.Background(), &SubmissionHashDAO, proteus.Sqlite, m)
	if err != nil {
		panic(err)
	}
}

// ErrDuplicateWord is returned by CheckHash when the hash matches an earlier
// submission.
type ErrDuplicateWord struct {
	MessageID int64
}

func (e ErrDuplicateWord) Error() string {
	return fmt.Sprintf("word was already played in message %d", e.MessageID)
}

// CheckHash records the hash for the given message and returns
// ErrDuplicateWord if the same hash was stored for a different message in the
// same guild. Words played in one guild stay playable in every other guild.
// FindByMD5 yields a zero message ID when the hash is unseen.
func CheckHash(ctx context.Context, e proteus.ContextWrapper, gid int, mid int, hash [16]byte) error {
	midFound, err := SubmissionHashDAO.FindByMD5(ctx, e, gid, hash[:])
	if err != nil {
		return fmt.Errorf("error while looking up submission hash: %w", err)
	}
	if midFound != 0 && midFound != int64(mid) {
		return ErrDuplicateWord{MessageID: midFound}
	}
	_, err = SubmissionHashDAO.Upsert(ctx, e, gid, mid, hash[:])
	if err != nil {
		return fmt.Errorf("error while storing submission hash: %w", err)
	}
	return nil
}
