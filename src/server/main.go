package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexitally/lexitally/src/lexitally"
	"github.com/lexitally/lexitally/src/lexitally/db"
	"github.com/spf13/viper"
)

func main() {
	conf := readConfig()
	lt := lexitally.NewLexitally(conf)

	err := lt.Open()
	if err != nil {
		log.Fatalf("fail error opening bot: %v", err)
	}

	log.Println("Bot is now running.  Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt, os.Kill)
	<-sc

	// Cleanly close down the Discord session.
	err = lt.Close()
	if err != nil {
		log.Println("error closing session,", err)
	}
}

func readConfig() lexitally.Config {
	viper.SetDefault("scoreWords", true)
	viper.SetDefault("reactToScore", true)
	viper.SetDefault("replyWithScore", true)
	viper.SetDefault("explainInvalid", true)
	viper.SetDefault("serveLeaderboard", true)
	viper.SetDefault("positiveReacts", []string{"💯", "🎯", "🏅", "🎲", "🧮"})
	viper.SetDefault("negativeReacts", []string{"🚫", "⛔"})
	viper.SetDefault("dbPath", "./lexitallyDB.sqlite3")
	viper.SetDefault("debug", false)

	viper.SetEnvPrefix("LEXITALLY")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.AddConfigPath("/etc/lexitally")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		log.Println("no config file found, using defaults,", err)
	}
	flags := db.ConfigFlag(0)
	if viper.GetBool("scoreWords") {
		flags |= db.ConfigScoreWords
	}
	if viper.GetBool("reactToScore") {
		flags |= db.ConfigReactToScore
	}
	if viper.GetBool("replyWithScore") {
		flags |= db.ConfigReplyWithScore
	}
	if viper.GetBool("explainInvalid") {
		flags |= db.ConfigExplainInvalid
	}
	if viper.GetBool("serveLeaderboard") {
		flags |= db.ConfigServeLeaderboard
	}
	return lexitally.Config{
		Token:          viper.GetString("token"),
		DefaultFlags:   flags,
		PositiveReacts: viper.GetStringSlice("positiveReacts"),
		NegativeReacts: viper.GetStringSlice("negativeReacts"),
		Debug:          viper.GetBool("debug"),
		DBPath:         viper.GetString("dbPath"),
	}
}
