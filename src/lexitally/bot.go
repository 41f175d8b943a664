package lexitally

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lexitally/lexitally/src/lexitally/db"

	_ "github.com/mattn/go-sqlite3"
)

const commandPrefix = "!tally"

type Config struct {
	Token          string
	DBPath         string
	DefaultFlags   db.ConfigFlag
	PositiveReacts []string
	NegativeReacts []string

	Debug bool
}

func (c Config) String() string {
	return fmt.Sprintf("\tDefaultFlags: %s\n\tDBPath: %s\n\tDebug: %t\n", c.DefaultFlags, c.DBPath, c.Debug)
}

type Lexitally struct {
	session *discordgo.Session
	db      *sql.DB

	config Config

	channelCache map[string]*discordgo.Channel
	dmCache      map[string]*discordgo.Channel
}

func NewLexitally(config Config) Lexitally {
	log.Printf("Lexitally Bot Config:\n%v", config)
	return Lexitally{
		config:       config,
		channelCache: make(map[string]*discordgo.Channel),
		dmCache:      make(map[string]*discordgo.Channel),
	}
}

func (l *Lexitally) Open() error {
	var err error
	l.db, err = sql.Open("sqlite3", l.config.DBPath)
	if err != nil {
		log.Println("error opening database,", err)
		return err
	}
	err = db.BootstrapDB(l.db)
	if err != nil {
		log.Println("error bootstrapping database,", err)
		return err
	}
	go UpdateHashes(l.db)

	l.session, err = discordgo.New("Bot " + l.config.Token)
	if err != nil {
		log.Println("error creating Discord session,", err)
		return err
	}

	if l.config.Debug {
		l.session.LogLevel = discordgo.LogDebug
	}

	l.session.AddHandler(l.ReceiveNewMessage)

	l.session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages |
		discordgo.IntentsGuildMessageReactions | discordgo.IntentsDirectMessageReactions

	err = l.session.Open()
	if err != nil {
		log.Println("error opening connection,", err)
		return err
	}
	return nil
}

func (l *Lexitally) Close() error {
	err := l.session.Close()
	if dbErr := l.db.Close(); err == nil {
		err = dbErr
	}
	return err
}

func (l *Lexitally) ReceiveNewMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic on content, %s, panicking on: %v\n%v", strings.ReplaceAll(m.Content, "\n", "\\n"), r, debug.Stack())
			panic(r)
		}
	}()
	if m.Author.Bot { // prevent SkyNet; don't talk to bots
		return
	}
	if strings.HasPrefix(m.Content, commandPrefix) {
		l.HandleCommand(s, m.Message)
		return
	}

	flags := l.lookupFlags(m.Message)
	if !flags.ScoreWords() {
		return
	}

	result, err := Evaluate(m.Content)
	if err != nil {
		l.HandleInvalid(s, m, flags, err)
		return
	}
	l.HandleSubmission(s, m, flags, result)
}

func (l *Lexitally) HandleSubmission(s *discordgo.Session, m *discordgo.MessageCreate, flags db.ConfigFlag, result Result) {
	log.Printf("received submission: %s", strings.ReplaceAll(m.Content, "\n", "\\n"))
	ctx := context.Background()

	gid, cid, mid, ok := parseIDs(m.Message)
	if ok {
		if err := db.CheckHash(ctx, l.db, gid, mid, SubmissionHash(result.Word)); err != nil {
			var dup db.ErrDuplicateWord
			if !errors.As(err, &dup) {
				log.Println("could not check submission hash,", err)
				return
			}
			log.Println("rejected duplicate word,", m.ID, result.Word)
			if flags.ReplyWithScore() {
				s.ChannelMessageSendReply(m.ChannelID, dup.Error(), m.Reference())
			}
			return
		}
		_, err := db.SubmissionDAO.Upsert(ctx, l.db, db.Submission{
			GuildID:   gid,
			ChannelID: cid,
			MessageID: mid,
			AuthorID:  m.Author.Username + "#" + m.Author.Discriminator,
			Word:      result.Word,
			Points:    result.Total(),
		})
		if err != nil {
			log.Println("could not store submission,", err)
		}
	}

	if flags.ReactToScore() {
		if reaction, ok := pickReact(l.config.PositiveReacts); ok {
			l.react(s, m, reaction)
		}
	}
	if flags.ReplyWithScore() {
		s.ChannelMessageSendReply(m.ChannelID, result.String(), m.Reference())
	}
}

func (l *Lexitally) HandleInvalid(s *discordgo.Session, m *discordgo.MessageCreate, flags db.ConfigFlag, evalErr error) {
	if flags.ReactToScore() {
		if reaction, ok := pickReact(l.config.NegativeReacts); ok {
			l.react(s, m, reaction)
		}
	}

	if isDM, err := l.isDM(s, m.ChannelID); err == nil && isDM && flags.ExplainInvalid() {
		l.ExplainInvalid(s, m, evalErr)
	} else if err != nil {
		log.Println("could not lookup channel,", err)
	}
}

func (l *Lexitally) ExplainInvalid(s *discordgo.Session, m *discordgo.MessageCreate, evalErr error) {
	if evalErr == nil {
		log.Println("tried to explain a valid submission,", strings.ReplaceAll(m.Content, "\n", "\\n"))
		return
	}
	dmChannel, err := l.createDMChannel(s, m.Author.ID)
	if err != nil {
		log.Println("could not create user DM channel,", err)
		return
	}
	_, err = s.ChannelMessageSend(dmChannel.ID, evalErr.Error())
	if err != nil {
		log.Println("could not send message to user DM channel,", err)
		return
	}
}

// lookupFlags merges any stored guild/channel flags; when nothing is stored
// the configured defaults apply.
func (l *Lexitally) lookupFlags(m *discordgo.Message) db.ConfigFlag {
	gid, cid, _, ok := parseIDs(m)
	if !ok {
		return l.config.DefaultFlags
	}
	flags, err := db.LookupFlags(context.Background(), l.db, gid, cid)
	if err != nil {
		log.Println("could not look up config flags,", err)
		return l.config.DefaultFlags
	}
	if flags == 0 {
		return l.config.DefaultFlags
	}
	return flags
}

func parseIDs(m *discordgo.Message) (guildID, channelID, messageID int, ok bool) {
	var err error
	guildID, err = strconv.Atoi(m.GuildID)
	if err != nil {
		return 0, 0, 0, false
	}
	channelID, err = strconv.Atoi(m.ChannelID)
	if err != nil {
		return 0, 0, 0, false
	}
	messageID, err = strconv.Atoi(m.ID)
	if err != nil {
		return 0, 0, 0, false
	}
	return guildID, channelID, messageID, true
}

func (l *Lexitally) isDM(s *discordgo.Session, channelID string) (bool, error) {
	c, err := l.lookupChannel(s, channelID)
	if err != nil {
		return false, err
	}
	return c.Type == discordgo.ChannelTypeDM && len(c.Recipients) == 1, nil
}

func (l *Lexitally) react(s *discordgo.Session, m *discordgo.MessageCreate, reaction string) {
	err := s.MessageReactionAdd(m.ChannelID, m.Message.ID, reaction)
	if err != nil {
		log.Println("could not add emoji reaction,", err)
		return
	}
}

func (l *Lexitally) createDMChannel(s *discordgo.Session, authorID string) (*discordgo.Channel, error) {
	if c, ok := l.dmCache[authorID]; ok {
		return c, nil
	}
	c, err := s.UserChannelCreate(authorID)
	if err != nil {
		return nil, err
	}
	log.Println("retrieved new DM channel for user", authorID)
	l.channelCache[c.ID] = c
	l.dmCache[authorID] = c
	return c, nil
}

func (l *Lexitally) lookupChannel(s *discordgo.Session, channelID string) (*discordgo.Channel, error) {
	if c, ok := l.channelCache[channelID]; ok {
		return c, nil
	}
	c, err := s.Channel(channelID)
	if err != nil {
		return nil, err
	}
	log.Println("looked up channel", channelID)
	l.channelCache[channelID] = c
	if c.Type == discordgo.ChannelTypeDM && len(c.Recipients) == 1 {
		l.dmCache[c.Recipients[0].ID] = c
	}
	return c, nil
}

// pickReact chooses a random reaction, reporting false when none are
// configured.
func pickReact(reacts []string) (string, bool) {
	if len(reacts) == 0 {
		return "", false
	}
	return reacts[rand.Intn(len(reacts))], true
}

func quote(str string) string {
	return "> " + strings.ReplaceAll(str, "\n", "\n> ")
}
