package lexitally

import (
	"context"
	"crypto/md5"
	"database/sql"
	"log"
	"strings"

	"github.com/lexitally/lexitally/src/lexitally/db"
)

// SubmissionHash computes a hash used to detect replayed words. Case and
// punctuation are ignored, so "Tea", "tea", and "t.e.a" all hash alike;
// digits are kept, so "a1" and "a" do not.
func SubmissionHash(word string) [md5.Size]byte {
	s := strings.ToUpper(hashStrip(word))
	sum := md5.New()
	sum.Write([]byte(s))

	out := make([]byte, 0, md5.Size)
	out = sum.Sum(out[:])

	var result [md5.Size]byte
	for i := 0; i < md5.Size; i++ {
		result[i] = out[i]
	}
	return result
}

func hashStrip(s string) string {
	var result strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9') {
			result.WriteByte(b)
		}
	}
	return result.String()
}

// UpdateHashes ensures all submissions have their hashes loaded into the
// table. It's intended to be run on a separate thread on startup.
func UpdateHashes(sqlDB *sql.DB) {
	defer func() {
		if err := recover(); err != nil {
			log.Printf("recovered from panic in UpdateHashes: %v", err)
			return
		}
	}()
	log.Println("beginning UpdateHashes.")
	ctx := context.Background()
	rows, err := sqlDB.QueryContext(ctx, `SELECT guild_id, message_id, word FROM submission`)
	if err == sql.ErrNoRows {
		return
	}
	if err != nil {
		log.Println("encountered error while updating hashes,", err)
		return
	}
	defer rows.Close()
	var (
		guildID   int
		messageID int
		word      string
	)
	insertCount := 0
	for rows.Next() {
		err = rows.Scan(&guildID, &messageID, &word)
		if err != nil {
			log.Println("encountered error while scanning hashes,", err)
			return
		}
		hash := SubmissionHash(word)
		count, _ := db.SubmissionHashDAO.Upsert(ctx, sqlDB, guildID, messageID, hash[:])
		if count != 0 {
			insertCount++
		}
	}
	log.Printf("upserted %d new submission hashes", insertCount)
}
