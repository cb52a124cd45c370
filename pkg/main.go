package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	pkg "git.solsynth.dev/hypernet/survey/pkg/internal"
	"git.solsynth.dev/hypernet/survey/pkg/internal/cache"
	"git.solsynth.dev/hypernet/survey/pkg/internal/database"
	"git.solsynth.dev/hypernet/survey/pkg/internal/grpc"
	"git.solsynth.dev/hypernet/survey/pkg/internal/http"
	"git.solsynth.dev/hypernet/survey/pkg/internal/services"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" ____                            \n/ ___| _   _ _ ____   _____ _   _ \n\\___ \\| | | | '__\\ \\ / / _ \\ | | |\n ___) | |_| | |   \\ V /  __/ |_| |\n|____/ \\__,_|_|    \\_/ \\___|\\__, |\n                            |___/ "))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Hypernet.Survey"), pkg.AppVersion)
	fmt.Printf("The spatial survey service in Hypernet\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("An error occurred when loading .env file.")
	}
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")
	viper.SetEnvPrefix("SURVEY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.SetDefault("audit.schedule", "@every 60m")
	viper.SetDefault("cache.survey_listing_ttl", "5m")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	if viper.GetBool("debug.enabled") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	services.AnswerPresencePolicy = lo.Ternary(
		viper.GetBool("survey.count_empty_answers"),
		services.PresenceRow,
		services.PresenceValue,
	)

	// Connect to database
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Initialize cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	grpcServer := grpc.NewGrpc()
	grpcServer.CheckDatabase()

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	if _, err := quartz.AddFunc(viper.GetString("audit.schedule"), services.DoProgressAudit); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when scheduling progress audit.")
	}
	quartz.AddFunc("@every 30s", grpcServer.CheckDatabase)
	quartz.Start()

	// Server
	go http.NewServer().Listen()

	go func() {
		if err := grpcServer.Listen(); err != nil {
			log.Fatal().Err(err).Msg("An error occurred when starting grpc server...")
		}
	}()

	log.Info().Str("bind", viper.GetString("bind")).Str("grpc_bind", viper.GetString("grpc_bind")).Msg("Survey service started.")

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
	grpcServer.Stop()
}
