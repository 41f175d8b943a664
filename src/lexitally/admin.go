package lexitally

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lexitally/lexitally/src/lexitally/db"
)

// adminCommandPerms is a bitmask for the min permissions required to send
// feature commands. If any flag is set, the user can change Lexitally config.
const adminCommandPerms = discordgo.PermissionAdministrator | discordgo.PermissionManageChannels | discordgo.PermissionManageServer

func (l *Lexitally) HandleCommand(s *discordgo.Session, m *discordgo.Message) {
	gid := m.GuildID // store original guild ID
	m, err := s.ChannelMessage(m.ChannelID, m.ID)
	if err != nil {
		log.Println("could not look up message from channel", err)
		return
	}
	m.GuildID = gid

	commandRaw := strings.TrimPrefix(m.Content, commandPrefix+" ")
	command, err := parseCommand(commandRaw)
	if err != nil {
		s.ChannelMessageSendReply(m.ChannelID, err.Error(), m.Reference())
		return
	}

	// top and help are open to everybody; feature commands need perms
	switch command.Operation {
	case OpTop:
		l.handleTop(s, m)
		return
	case OpHelp:
		s.ChannelMessageSendReply(m.ChannelID, CommandHelp, m.Reference())
		return
	}

	perms, err := l.Permissions(s, m)
	if err != nil {
		log.Println("could not retrieve permissions for user, ignoring admin command,", err)
		return
	}
	if perms&adminCommandPerms == 0 {
		if l.config.Debug {
			log.Printf("could not verify admin permissions, found perms %d, expected %d", perms, adminCommandPerms)
		}
		l.DM(s, m, fmt.Sprintf("You do not have permissions to manage Lexitally in <#%s>", m.ChannelID))
		return
	}

	switch command.Operation {
	case OpFeatureOn:
		l.updateFeatures(m, command, EnableFeatures)
		s.ChannelMessageSendReply(m.ChannelID, fmt.Sprintf("Enabled features %s for target %s", command.Features.String(), command.MentionTarget()), m.Reference())
	case OpFeatureOff:
		l.updateFeatures(m, command, DisableFeatures)
		s.ChannelMessageSendReply(m.ChannelID, fmt.Sprintf("Disabled features %s for target %s", command.Features.String(), command.MentionTarget()), m.Reference())
	case OpFeatureList:
		l.handleFeatureList(s, m, command)
	}
}

func (l *Lexitally) DM(s *discordgo.Session, m *discordgo.Message, content string) {
	dmChannel, err := l.createDMChannel(s, m.Author.ID)
	if err != nil {
		log.Println("could not create user DM channel,", err)
		return
	}
	_, err = s.ChannelMessageSend(dmChannel.ID, content)
	if err != nil {
		log.Println("could not send message to user DM channel,", err)
	}
}

func (l *Lexitally) Permissions(s *discordgo.Session, m *discordgo.Message) (int64, error) {
	g, err := s.Guild(m.GuildID)
	if err != nil {
		return 0, err
	}
	if g.OwnerID == m.Author.ID {
		return discordgo.PermissionAll, nil
	}
	member, err := s.GuildMember(m.GuildID, m.Author.ID)
	if err != nil {
		return 0, err
	}
	roles, err := s.GuildRoles(m.GuildID)
	if err != nil {
		return 0, err
	}
	roleMap := make(map[string]int64)
	for _, role := range roles {
		roleMap[role.Name] = role.Permissions
	}
	permissions := roleMap["@everyone"]
	for _, role := range member.Roles {
		permissions |= roleMap[role]
	}
	if permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator {
		return discordgo.PermissionAll, nil
	}
	return permissions, nil
}

const leaderboardSize = 10

func (l *Lexitally) handleTop(s *discordgo.Session, m *discordgo.Message) {
	if !l.lookupFlags(m).ServeLeaderboard() {
		return
	}
	gid, err := strconv.Atoi(m.GuildID)
	if err != nil {
		log.Println("could not parse guildID as integer,", m.GuildID)
		return
	}
	ctx := context.Background()
	board, err := db.SubmissionDAO.Leaderboard(ctx, l.db, gid, leaderboardSize)
	if err != nil {
		log.Println("could not read leaderboard from database,", err)
		return
	}
	if len(board) == 0 {
		s.ChannelMessageSendReply(m.ChannelID, "Nobody has scored any words here yet.", m.Reference())
		return
	}
	best, err := db.SubmissionDAO.Top(ctx, l.db, gid, 1)
	if err != nil {
		log.Println("could not read top submission from database,", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("**Leaderboard**\n")
	for i, row := range board {
		fmt.Fprintf(&sb, "%d. %s — %d points\n", i+1, row.AuthorID, row.Points)
	}
	if len(best) > 0 {
		fmt.Fprintf(&sb, "Best word so far:\n%s (%d points, by %s)", quote(best[0].Word), best[0].Points, best[0].AuthorID)
	}
	s.ChannelMessageSendReply(m.ChannelID, sb.String(), m.Reference())
}

func (l *Lexitally) handleFeatureList(s *discordgo.Session, m *discordgo.Message, command Command) {
	ctx := context.Background()
	switch command.Target {
	case "global":
		gid, err := strconv.Atoi(m.GuildID)
		if err != nil {
			log.Println("could not parse guildID as integer,", m.GuildID)
			return
		}
		currConfig, err := db.GuildConfigDAO.FindByID(ctx, l.db, gid)
		if err != nil {
			log.Println("could not read guild config from database,", err)
			return
		}
		s.ChannelMessageSendReply(m.ChannelID, fmt.Sprintf("Features enabled for target %s: %s", command.MentionTarget(), currConfig.Flags), m.Reference())
	default:
		cid, err := strconv.Atoi(command.Target)
		if err != nil {
			log.Println("could not parse channelID as integer,", m.ChannelID)
			return
		}
		currConfig, err := db.ChannelConfigDAO.FindByID(ctx, l.db, cid)
		if err != nil {
			log.Println("could not read channel config from database,", err)
			return
		}
		s.ChannelMessageSendReply(m.ChannelID, fmt.Sprintf("Features enabled for target %s: %s", command.MentionTarget(), currConfig.Flags), m.Reference())
	}
}

type featureMutator func(db.ConfigFlag, db.ConfigFlag) db.ConfigFlag

func EnableFeatures(current db.ConfigFlag, feats db.ConfigFlag) db.ConfigFlag {
	return current.Or(feats)
}

func DisableFeatures(current db.ConfigFlag, feats db.ConfigFlag) db.ConfigFlag {
	return current.And(^feats) // and with bitwise not
}

func (l *Lexitally) updateFeatures(m *discordgo.Message, command Command, mutator featureMutator) {
	ctx := context.Background()
	switch command.Target {
	case "global":
		gid, err := strconv.Atoi(m.GuildID)
		if err != nil {
			log.Println("could not parse guildID as integer,", m.GuildID)
			return
		}
		currConfig, err := db.GuildConfigDAO.FindByID(ctx, l.db, gid) // read
		if err != nil {
			log.Println("could not retrieve guild config,", err)
		}

		// modify
		currConfig.GuildID = gid
		currConfig.Flags = mutator(currConfig.Flags, command.Features)

		_, err = db.GuildConfigDAO.Upsert(ctx, l.db, currConfig) // write
		if err != nil {
			log.Println("could not update guild config,", err)
		}
	default: // channel ID (target was verified by caller)
		cid, err := strconv.Atoi(command.Target)
		if err != nil {
			log.Println("could not parse channelID as integer,", command.Target)
			return
		}
		currConfig, err := db.ChannelConfigDAO.FindByID(ctx, l.db, cid) // read
		if err != nil {
			log.Println("could not retrieve channel config,", err)
		}

		currConfig.Flags = mutator(currConfig.Flags, command.Features)

		_, err = db.ChannelConfigDAO.Upsert(ctx, l.db, cid, int64(currConfig.Flags)) // write
		if err != nil {
			log.Println("could not update channel config,", err)
		}
	}
}

type Operation uint8

const (
	OpFeatureOn Operation = iota
	OpFeatureOff
	OpFeatureList
	OpTop
	OpHelp
)

type Command struct {
	Operation Operation
	Target    string
	Features  db.ConfigFlag
}

func (c Command) MentionTarget() string {
	if c.Target == "global" {
		return "global"
	}
	return fmt.Sprintf("<#%s>", c.Target)
}

func parseCommand(content string) (Command, error) {
	var err error
	tokens := strings.Split(content, " ")
	var trimmed []string
	for _, token := range tokens {
		if token != "" {
			trimmed = append(trimmed, token)
		}
	}
	tokens = trimmed
	if len(tokens) < 1 {
		return Command{}, errors.New("expected a valid command after `!tally`; send `!tally help` for help")
	}
	command := tokens[0]
	if len(tokens) > 1 {
		command += " " + tokens[1]
	}
	result := Command{}
	switch {
	case command == "top":
		result.Operation = OpTop
		return result, nil
	case command == "help":
		result.Operation = OpHelp
		return result, nil
	case strings.HasPrefix(command, "feature on"):
		result.Operation = OpFeatureOn
		if len(tokens) < 4 {
			return Command{}, errors.New("expected a target and list of features after `feature on`; send `!tally help` for help")
		}
	case strings.HasPrefix(command, "feature off"):
		result.Operation = OpFeatureOff
		if len(tokens) < 4 {
			return Command{}, errors.New("expected a target and list of features after `feature off`; send `!tally help` for help")
		}
	case strings.HasPrefix(command, "feature list"):
		result.Operation = OpFeatureList
		if len(tokens) < 3 {
			return Command{}, errors.New("expected a target after `feature list`; send `!tally help` for help")
		}
	default:
		return Command{}, fmt.Errorf("could not understand command %s", command)
	}

	// parse channel mention
	result.Target = tokens[2]
	if result.Target != "global" && strings.HasPrefix(result.Target, "<#") {
		id, err := strconv.Atoi(strings.TrimSuffix(result.Target[2:], ">"))
		if err != nil {
			return Command{}, fmt.Errorf("couldn't parse target '%s' as valid channel mention", result.Target)
		}
		result.Target = fmt.Sprintf("%d", id)
	} else if result.Target != "global" {
		return Command{}, fmt.Errorf("couldn't parse target '%s' as valid target", result.Target)
	}

	if result.Operation == OpFeatureList {
		return result, nil
	}

	result.Features, err = parseFeatures(tokens[3:])
	if err != nil {
		return Command{}, err
	}
	return result, nil
}

func parseFeatures(features []string) (db.ConfigFlag, error) {
	var result db.ConfigFlag
	for _, feature := range features {
		switch feature {
		case "ScoreWords":
			result |= db.ConfigScoreWords
		case "ReactToScore":
			result |= db.ConfigReactToScore
		case "ReplyWithScore":
			result |= db.ConfigReplyWithScore
		case "ExplainInvalid":
			result |= db.ConfigExplainInvalid
		case "ServeLeaderboard":
			result |= db.ConfigServeLeaderboard
		case "": // ignore
		default:
			return 0, fmt.Errorf("could not understand '%s' as a valid feature; send `!tally help` for help", feature)
		}
	}
	return result, nil
}

var CommandHelp = `Anyone may send:
  ~~~!tally top~~~ - show the guild leaderboard and the best word so far
  ~~~!tally help~~~ - show this message

Feature commands must be sent in the guild they are meant to apply to, and require manage permissions:
  ~~~!tally feature on [target] [feature feature...]~~~
  ~~~!tally feature off [target] [feature feature...]~~~
  ~~~!tally feature list [target]~~~

~~~[target]~~~ can be either a channel mention or ~~~global~~~ to enable features for every channel in the guild.
~~~[feature feature...]~~~ is a space-separated list of features from the below list.

   - ~~~ScoreWords~~~ - score single-word messages: 1 point per vowel, 2 per other character
   - ~~~ReactToScore~~~ - adds an emoji reaction to scored submissions
   - ~~~ReplyWithScore~~~ - replies to each submission with its point total
   - ~~~ExplainInvalid~~~ - explains over DM why a message could not be scored
   - ~~~ServeLeaderboard~~~ - allows ~~~!tally top~~~ in the channel
`

func init() {
	CommandHelp = strings.ReplaceAll(CommandHelp, "~~~", "`")
}
