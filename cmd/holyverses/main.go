package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"holyverses/internal/app"
	"holyverses/internal/config"
	"holyverses/internal/devo"
	"holyverses/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a DevoApp. The caller must defer app.Close().
func newApp() (*app.DevoApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewDevoApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "holyverses",
	Short: "Daily verse and prayer streak companion",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Generate a new host ID
		hostID := uuid.New().String()

		// Create config with defaults
		cfg := config.NewConfig(hostID, defaults["base_dir"])

		// Initialize config file
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Read config
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		// Display config
		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:     %s\n", cfg.HostID)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Corpus Dir:  %s\n", cfg.Corpus.Dir)
		fmt.Printf("Daily Verse: %s\n", cfg.Notifications.DailyVerseTime)
		fmt.Printf("Reminders:   %v\n", cfg.Notifications.PrayerReminderTimes)
		return nil
	},
}

// corpus command
var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the scripture corpus",
}

var corpusIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Parse and load the corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var result *devo.IngestResult
		if force {
			result, err = a.Service().ForceReload()
		} else {
			result, err = a.Service().EnsureIngested()
		}
		if err != nil {
			return fmt.Errorf("ingesting corpus: %w", err)
		}
		if result == nil {
			fmt.Println("Corpus already ingested. Use --force to reload.")
			return nil
		}

		fmt.Printf("Ingested %d book(s), %d chapter(s), %d verse(s)\n",
			result.Books, result.Chapters, result.Verses)
		for _, f := range result.Failures {
			fmt.Printf("skipped %s: %v\n", f.Name, f.Err)
		}
		return nil
	},
}

var corpusStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "View corpus status",
	RunE: func(cmd *cobra.Command, args []string) error {
		testament, _ := cmd.Flags().GetString("testament")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var books []*model.Book
		switch testament {
		case "":
			books, err = a.Service().Books()
		case "OLD", "NEW":
			books, err = a.Service().BooksByTestament(model.Testament(testament))
		default:
			return fmt.Errorf("invalid testament %q (want OLD or NEW)", testament)
		}
		if err != nil {
			return err
		}
		undelivered, err := a.Service().UndeliveredCount()
		if err != nil {
			return err
		}

		if len(books) == 0 {
			fmt.Println("No corpus loaded. Run 'holyverses corpus ingest'.")
			return nil
		}

		fmt.Printf("%d book(s) loaded, %d verse(s) not yet delivered\n\n", len(books), undelivered)
		for _, b := range books {
			fmt.Printf("%3d  %-4s %-24s %-3s  %d chapter(s)\n",
				b.ID, b.Abbreviation, b.Name, b.Testament, b.ChapterCount)
		}
		return nil
	},
}

// verse command
var verseCmd = &cobra.Command{
	Use:   "verse",
	Short: "Daily verse operations",
}

var verseTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the verse for today",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		verse, err := a.Service().SelectDailyVerse(date)
		if err != nil {
			return fmt.Errorf("selecting verse: %w", err)
		}

		fmt.Println(verse.Text)
		return nil
	},
}

var verseReadCmd = &cobra.Command{
	Use:   "read BOOK_ID [CHAPTER]",
	Short: "Read a chapter, or list a book's chapters",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid book id %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		chapters, err := a.Service().Chapters(bookID)
		if err != nil {
			return err
		}
		if len(chapters) == 0 {
			return fmt.Errorf("no chapters for book %d", bookID)
		}

		if len(args) == 1 {
			fmt.Printf("Book %d has %d chapter(s)\n", bookID, len(chapters))
			return nil
		}

		chapterNumber, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid chapter number %q", args[1])
		}
		for _, c := range chapters {
			if c.ChapterNumber != chapterNumber {
				continue
			}
			verses, err := a.Service().Verses(c.ID)
			if err != nil {
				return err
			}
			for _, v := range verses {
				fmt.Printf("%d %s\n", v.VerseNumber, v.Text)
			}
			return nil
		}
		return fmt.Errorf("book %d has no chapter %d", bookID, chapterNumber)
	},
}

var verseDeliverCmd = &cobra.Command{
	Use:   "deliver",
	Short: "Deliver the daily verse notification now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().DeliverDailyVerse(); err != nil {
			return fmt.Errorf("delivering verse: %w", err)
		}
		return nil
	},
}

// pray command
var prayCmd = &cobra.Command{
	Use:   "pray",
	Short: "Prayer log operations",
}

var prayLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a prayer session",
	RunE: func(cmd *cobra.Command, args []string) error {
		at, _ := cmd.Flags().GetString("at")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var session *model.PrayerSession
		var unlocked []*model.Achievement
		if at != "" {
			session, unlocked, err = a.Service().LogPrayer(at)
		} else {
			session, unlocked, err = a.Service().LogManualPrayer()
		}
		if err != nil {
			return fmt.Errorf("logging prayer: %w", err)
		}

		fmt.Printf("Prayer logged: day %d of your streak, +%d points\n",
			session.StreakDay, session.PointsEarned)
		for _, ach := range unlocked {
			fmt.Printf("Achievement unlocked: %s %s (+%d points)\n", ach.Icon, ach.Title, ach.PointsReward)
		}
		return nil
	},
}

var prayStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View prayer statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Service().PrayerStats()
		if err != nil {
			return err
		}

		fmt.Printf("Sessions:      %d\n", stats.TotalSessions)
		fmt.Printf("Points:        %d\n", stats.TotalPoints)
		fmt.Printf("Streak:        %d day(s)\n", stats.CurrentStreak)
		fmt.Printf("Consecutive:   %d day(s)\n", stats.ConsecutiveStreak)
		fmt.Printf("Today:         %d session(s)\n", stats.TodayCount)
		fmt.Printf("Achievements:  %d of %d unlocked\n", stats.Unlocked, stats.Achievements)
		return nil
	},
}

var prayRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "View recent prayer sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sessions, err := a.Service().RecentPrayerSessions(limit)
		if err != nil {
			return err
		}

		if len(sessions) == 0 {
			fmt.Println("No prayer sessions logged.")
			return nil
		}

		for _, s := range sessions {
			kind := "scheduled"
			if s.ManualEntry {
				kind = "manual"
			}
			fmt.Printf("#%d  %s  %s  day %d  +%d  %s\n",
				s.ID, s.Date, s.PrayedAt.Format("15:04"), s.StreakDay, s.PointsEarned, kind)
		}
		return nil
	},
}

var prayHistoryCmd = &cobra.Command{
	Use:   "history START END",
	Short: "View prayer sessions in a date range",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sessions, err := a.Service().PrayerSessionsBetween(args[0], args[1])
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Printf("No prayer sessions between %s and %s.\n", args[0], args[1])
			return nil
		}

		for _, s := range sessions {
			fmt.Printf("#%d  %s  %s  day %d  +%d\n",
				s.ID, s.Date, s.PrayedAt.Format("15:04"), s.StreakDay, s.PointsEarned)
		}
		return nil
	},
}

var prayDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a prayer session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid session id %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().DeletePrayerSession(id); err != nil {
			return fmt.Errorf("deleting session: %w", err)
		}
		fmt.Printf("Deleted session #%d\n", id)
		return nil
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "View achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		achievements, err := a.Service().Achievements()
		if err != nil {
			return err
		}

		for _, ach := range achievements {
			status := "locked"
			if ach.Unlocked {
				status = "unlocked " + ach.UnlockedAt.Format("2006-01-02")
			}
			fmt.Printf("%s %-24s %-40s %s\n", ach.Icon, ach.Title, ach.Description, status)
		}
		return nil
	},
}

// schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the notification scheduler",
	Long: "Registers the daily verse job and all configured prayer reminders,\n" +
		"then runs in the foreground until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ScheduleAll(); err != nil {
			return fmt.Errorf("scheduling jobs: %w", err)
		}

		fmt.Println("Scheduler running. Press Ctrl-C to stop.")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		fmt.Println("Stopping.")
		return nil
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the signed-in user",
}

var userSigninCmd = &cobra.Command{
	Use:   "signin EMAIL [NAME]",
	Short: "Sign in a user",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		u := &model.User{ID: id, Email: args[0]}
		if len(args) > 1 {
			u.DisplayName = args[1]
		}
		if err := a.Service().SignIn(u); err != nil {
			return fmt.Errorf("signing in: %w", err)
		}
		fmt.Printf("Signed in as %s (id %s)\n", u.Email, u.ID)
		return nil
	},
}

var userSignoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().SignOut(); err != nil {
			return fmt.Errorf("signing out: %w", err)
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a stored user record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service().DeleteUser(args[0]); err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		fmt.Printf("Deleted user %s\n", args[0])
		return nil
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.Service().CurrentUser()
		if err != nil {
			return err
		}
		if u == nil {
			fmt.Println("Nobody is signed in.")
			return nil
		}

		fmt.Printf("ID:    %s\n", u.ID)
		fmt.Printf("Email: %s\n", u.Email)
		if u.DisplayName != "" {
			fmt.Printf("Name:  %s\n", u.DisplayName)
		}
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage backup encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a new key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if a.Encryptor().IsConfigured() {
			return fmt.Errorf("encryption keys already exist")
		}

		passphrase, err := readPassphrase("Passphrase for private key: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.Encryptor().Setup(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		fmt.Println("Key pair generated.")
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the database to the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Backup(); err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Println("Backup complete.")
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore OUTPUT",
	Short: "Restore the database snapshot from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase for private key: ")
		if err != nil {
			return err
		}

		if err := a.Restore(passphrase, args[0]); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("Restored database to %s\n", args[0])
		return nil
	},
}

// readPassphrase prompts on stderr and reads a passphrase without echo.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(data), nil
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// corpus subcommands
	corpusCmd.AddCommand(corpusIngestCmd)
	corpusIngestCmd.Flags().BoolP("force", "f", false, "Reload even if already ingested")
	corpusCmd.AddCommand(corpusStatusCmd)
	corpusStatusCmd.Flags().String("testament", "", "Filter books by testament (OLD or NEW)")

	// verse subcommands
	verseCmd.AddCommand(verseTodayCmd)
	verseTodayCmd.Flags().String("date", "", "Select for a specific date (YYYY-MM-DD)")
	verseCmd.AddCommand(verseReadCmd)
	verseCmd.AddCommand(verseDeliverCmd)

	// pray subcommands
	prayCmd.AddCommand(prayLogCmd)
	prayLogCmd.Flags().String("at", "", "Reminder slot this session answers (HH:MM)")
	prayCmd.AddCommand(prayStatsCmd)
	prayCmd.AddCommand(prayRecentCmd)
	prayRecentCmd.Flags().IntP("limit", "n", 20, "Maximum number of sessions to show")
	prayCmd.AddCommand(prayHistoryCmd)
	prayCmd.AddCommand(prayDeleteCmd)

	// user subcommands
	userCmd.AddCommand(userSigninCmd)
	userSigninCmd.Flags().String("id", "", "External identity id (a local one is generated when omitted)")
	userCmd.AddCommand(userSignoutCmd)
	userCmd.AddCommand(userShowCmd)
	userCmd.AddCommand(userDeleteCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(corpusCmd)
	rootCmd.AddCommand(verseCmd)
	rootCmd.AddCommand(prayCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
