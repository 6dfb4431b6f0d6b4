package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/n0madic/go-feedclient/internal/account"
	"github.com/n0madic/go-feedclient/internal/apiclient"
	"github.com/n0madic/go-feedclient/internal/auth"
	"github.com/n0madic/go-feedclient/internal/config"
	"github.com/n0madic/go-feedclient/internal/feed"
	"github.com/n0madic/go-feedclient/internal/social"
	"github.com/n0madic/go-feedclient/internal/video"
)

const commands = "Commands: login, register, logout, info, rename, passwd, user, " +
	"publish, list, detail, feed, like, unlike, liked, comments, comment, uncomment, " +
	"follow, unfollow, followers, following, decode"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: go-feedclient <command> [flags]")
		fmt.Fprintln(os.Stderr, commands)
		os.Exit(1)
	}

	setupLogging(false)
	config.LoadDotEnv()

	args := os.Args[2:]
	switch os.Args[1] {
	case "login":
		os.Exit(cmdLogin(args))
	case "register":
		os.Exit(cmdRegister(args))
	case "logout":
		os.Exit(cmdLogout(args))
	case "info":
		os.Exit(cmdInfo(args, os.Stdout))
	case "rename":
		os.Exit(cmdRename(args))
	case "passwd":
		os.Exit(cmdPasswd(args))
	case "user":
		os.Exit(cmdUser(args, os.Stdout))
	case "publish":
		os.Exit(cmdPublish(args))
	case "list":
		os.Exit(cmdList(args, os.Stdout))
	case "detail":
		os.Exit(cmdDetail(args))
	case "feed":
		os.Exit(cmdFeed(args, os.Stdout))
	case "like", "unlike", "liked":
		os.Exit(cmdLike(os.Args[1], args, os.Stdout))
	case "comments":
		os.Exit(cmdComments(args, os.Stdout))
	case "comment":
		os.Exit(cmdComment(args))
	case "uncomment":
		os.Exit(cmdUncomment(args))
	case "follow", "unfollow":
		os.Exit(cmdFollow(os.Args[1], args))
	case "followers", "following":
		os.Exit(cmdFollowList(os.Args[1], args, os.Stdout))
	case "decode":
		os.Exit(cmdDecode(args, os.Stdin, os.Stdout))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		fmt.Fprintln(os.Stderr, commands)
		os.Exit(1)
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

// commonFlags registers the flags shared by every networked command and
// returns a loader for the resulting config.
func commonFlags(fs *flag.FlagSet) func() (*config.Config, error) {
	baseURL := fs.String("base-url", "", "Backend base URL (default from config)")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	debug := fs.Bool("debug", false, "Dump raw HTTP requests and responses")
	return func() (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if *baseURL != "" {
			cfg.BaseURL = *baseURL
		}
		cfg.Verbose = cfg.Verbose || *verbose
		cfg.Debug = cfg.Debug || *debug
		setupLogging(cfg.Verbose)
		return cfg, nil
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// withClient loads the config and runs fn with a client for it. Errors are
// logged under action.
func withClient(load func() (*config.Config, error), action string, fn func(ctx context.Context, c *apiclient.Client) error) int {
	cfg, err := load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}
	ctx, cancel := signalContext()
	defer cancel()
	if err := fn(ctx, apiclient.New(cfg)); err != nil {
		slog.Error(action+" failed", "error", err)
		return 1
	}
	return 0
}

// sessionCredentials returns the credentials requests are made with:
// FEEDCLIENT_TOKEN when set, the stored session otherwise. override reports
// which one it is.
func sessionCredentials(cfg *config.Config) (cred *auth.Credentials, override bool, err error) {
	if cfg.Token != "" {
		return &auth.Credentials{Token: cfg.Token, AccountID: auth.DeriveAccountID(cfg.Token)}, true, nil
	}
	cred, err = auth.ReadCredentials()
	return cred, false, err
}

// idArg parses the single positional ID of a command.
func idArg(fs *flag.FlagSet, what string) (uint, bool) {
	if fs.NArg() != 1 {
		slog.Error(fmt.Sprintf("usage: go-feedclient %s [flags] <%s>", fs.Name(), what))
		return 0, false
	}
	id, err := strconv.ParseUint(fs.Arg(0), 10, 0)
	if err != nil {
		slog.Error("invalid "+what, "value", fs.Arg(0), "error", err)
		return 0, false
	}
	return uint(id), true
}

func cmdLogin(args []string) int {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	load := commonFlags(fs)
	username := fs.String("username", "", "Account username")
	password := fs.String("password", "", "Account password (prompted when empty)")
	fs.Parse(args)

	cfg, err := load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}
	if *username == "" {
		slog.Error("--username is required")
		return 1
	}
	pw := *password
	if pw == "" {
		pw = promptLine(os.Stdin, "Password: ")
	}

	ctx, cancel := signalContext()
	defer cancel()

	token, err := account.NewService(apiclient.New(cfg)).Login(ctx, *username, pw)
	if err != nil {
		slog.Error("login failed", "error", err)
		return 1
	}
	cred := auth.NewCredentials(token, *username)
	if err := auth.WriteCredentials(cred); err != nil {
		slog.Error("unable to persist credentials", "error", err)
		return 1
	}
	slog.Info("login successful; token saved", "account_id", cred.AccountID)
	return 0
}

func cmdRegister(args []string) int {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	load := commonFlags(fs)
	username := fs.String("username", "", "Account username")
	password := fs.String("password", "", "Account password (prompted when empty)")
	fs.Parse(args)

	cfg, err := load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}
	if *username == "" {
		slog.Error("--username is required")
		return 1
	}
	pw := *password
	if pw == "" {
		pw = promptLine(os.Stdin, "Password: ")
	}

	ctx, cancel := signalContext()
	defer cancel()

	msg, err := account.NewService(apiclient.New(cfg)).Register(ctx, *username, pw)
	if err != nil {
		slog.Error("registration failed", "error", err)
		return 1
	}
	slog.Info("registered", "username", *username, "message", msg)
	return 0
}

func cmdLogout(args []string) int {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	load := commonFlags(fs)
	local := fs.Bool("local", false, "Only forget the stored token, do not call the backend")
	fs.Parse(args)

	cfg, err := load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}

	if !*local {
		ctx, cancel := signalContext()
		defer cancel()
		err := account.NewService(apiclient.New(cfg)).Logout(ctx)
		switch {
		case errors.Is(err, auth.ErrNoCredentials):
			slog.Info("not signed in")
			return 0
		case err != nil:
			slog.Warn("backend logout failed; removing local token anyway", "error", err)
		}
	}
	if err := auth.RemoveCredentials(); err != nil {
		slog.Error("unable to remove credentials", "error", err)
		return 1
	}
	slog.Info("signed out")
	return 0
}

func cmdInfo(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "Output the decoded token payload as JSON")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}
	cred, override, err := sessionCredentials(cfg)
	if err != nil {
		if *jsonOut {
			fmt.Fprintln(out, "{}")
			return 0
		}
		fmt.Fprintln(out, "\U0001F464 Account")
		fmt.Fprintln(out, "  • Not signed in")
		fmt.Fprintln(out, "  • Run: go-feedclient login --username <name>")
		return 0
	}

	payload, ok := cred.Payload()
	if *jsonOut {
		if !ok {
			fmt.Fprintln(out, "{}")
			return 0
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Fprintln(out, string(data))
		return 0
	}

	printAccount(out, cred, payload, ok, time.Now())
	if override {
		fmt.Fprintln(out, "  • Token source: FEEDCLIENT_TOKEN (stored session ignored)")
	}
	return 0
}

func printAccount(out io.Writer, cred *auth.Credentials, payload auth.Payload, decoded bool, now time.Time) {
	fmt.Fprintln(out, "\U0001F464 Account")
	fmt.Fprintln(out, "  • Signed in")

	username := cred.Username
	if name, ok := payload.Username(); ok && name != "" {
		username = name
	}
	if username == "" {
		username = "<unknown>"
	}
	fmt.Fprintf(out, "  • Login: %s\n", username)

	accountID := cred.AccountID
	if id, ok := payload.AccountID(); ok {
		accountID = id
	}
	if accountID != 0 {
		fmt.Fprintf(out, "  • Account ID: %d\n", accountID)
	}
	if cred.LastLogin != "" {
		if t, err := time.Parse(time.RFC3339, cred.LastLogin); err == nil {
			fmt.Fprintf(out, "  • Last login: %s\n", formatLocalDateTime(t))
		}
	}

	if !decoded {
		fmt.Fprintln(out, "  • Token: opaque (payload cannot be decoded)")
		return
	}
	if iat, ok := payload.IssuedAt(); ok {
		fmt.Fprintf(out, "  • Issued: %s\n", formatLocalDateTime(iat))
	}
	if exp, ok := payload.ExpiresAt(); ok {
		status := "valid for " + formatDuration(exp.Sub(now))
		if payload.Expired(now) {
			status = "expired"
		}
		fmt.Fprintf(out, "  • Expires: %s (%s)\n", formatLocalDateTime(exp), status)
	}
}

func cmdPublish(args []string) int {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	load := commonFlags(fs)
	var in video.PublishInput
	fs.StringVar(&in.Title, "title", "", "Video title")
	fs.StringVar(&in.Description, "description", "", "Video description")
	fs.StringVar(&in.PlayURL, "play-url", "", "Playback URL")
	fs.StringVar(&in.CoverURL, "cover-url", "", "Cover image URL")
	fs.Parse(args)

	cfg, err := load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	v, err := video.NewService(apiclient.New(cfg)).Publish(ctx, in)
	if err != nil {
		slog.Error("publish failed", "error", err)
		return 1
	}
	return printJSON(os.Stdout, v)
}

func cmdList(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	load := commonFlags(fs)
	authorID := fs.Uint("author-id", 0, "Author account ID (default: the signed-in account)")
	fs.Parse(args)

	cfg, err := load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}
	id := *authorID
	if id == 0 {
		if cred, _, err := sessionCredentials(cfg); err == nil && cred.AccountID > 0 {
			id = uint(cred.AccountID)
		}
	}
	if id == 0 {
		slog.Error("--author-id is required when not signed in")
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	videos, err := video.NewService(apiclient.New(cfg)).ListByAuthorID(ctx, id)
	if err != nil {
		slog.Error("list failed", "error", err)
		return 1
	}
	return printJSON(out, videos)
}

func cmdDetail(args []string) int {
	fs := flag.NewFlagSet("detail", flag.ExitOnError)
	load := commonFlags(fs)
	fs.Parse(args)

	id, ok := idArg(fs, "video-id")
	if !ok {
		return 1
	}
	cfg, err := load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	v, err := video.NewService(apiclient.New(cfg)).GetDetail(ctx, id)
	if err != nil {
		slog.Error("detail failed", "error", err)
		return 1
	}
	return printJSON(os.Stdout, v)
}

func cmdRename(args []string) int {
	fs := flag.NewFlagSet("rename", flag.ExitOnError)
	load := commonFlags(fs)
	username := fs.String("username", "", "New username")
	fs.Parse(args)

	if *username == "" {
		slog.Error("--username is required")
		return 1
	}
	return withClient(load, "rename", func(ctx context.Context, c *apiclient.Client) error {
		msg, err := account.NewService(c).Rename(ctx, *username)
		if err != nil {
			return err
		}
		if c.Config.Token == "" {
			if cred, err := auth.ReadCredentials(); err == nil {
				cred.Username = *username
				if err := auth.WriteCredentials(cred); err != nil {
					slog.Warn("unable to update stored username", "error", err)
				}
			}
		}
		slog.Info("renamed", "username", *username, "message", msg)
		return nil
	})
}

func cmdPasswd(args []string) int {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	load := commonFlags(fs)
	username := fs.String("username", "", "Account username (default: the signed-in account)")
	oldPassword := fs.String("old-password", "", "Current password (prompted when empty)")
	newPassword := fs.String("new-password", "", "New password (prompted when empty)")
	fs.Parse(args)

	name := *username
	if name == "" {
		if cred, err := auth.ReadCredentials(); err == nil {
			name = cred.Username
		}
	}
	if name == "" {
		slog.Error("--username is required when not signed in")
		return 1
	}
	in := bufio.NewReader(os.Stdin)
	oldPW, newPW := *oldPassword, *newPassword
	if oldPW == "" {
		oldPW = promptLine(in, "Current password: ")
	}
	if newPW == "" {
		newPW = promptLine(in, "New password: ")
	}
	return withClient(load, "password change", func(ctx context.Context, c *apiclient.Client) error {
		msg, err := account.NewService(c).ChangePassword(ctx, name, oldPW, newPW)
		if err != nil {
			return err
		}
		slog.Info("password changed", "username", name, "message", msg)
		return nil
	})
}

// cmdUser looks an account up by id or username.
func cmdUser(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("user", flag.ExitOnError)
	load := commonFlags(fs)
	id := fs.Uint("id", 0, "Account ID")
	username := fs.String("username", "", "Account username")
	fs.Parse(args)

	if (*id == 0) == (*username == "") {
		slog.Error("exactly one of --id or --username is required")
		return 1
	}
	return withClient(load, "lookup", func(ctx context.Context, c *apiclient.Client) error {
		svc := account.NewService(c)
		var (
			a   account.Account
			err error
		)
		if *id != 0 {
			a, err = svc.FindByID(ctx, *id)
		} else {
			a, err = svc.FindByUsername(ctx, *username)
		}
		if err != nil {
			return err
		}
		printJSON(out, a)
		return nil
	})
}

func cmdFeed(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	load := commonFlags(fs)
	order := fs.String("sort", "latest", "Feed order: latest, likes or following")
	limit := fs.Int("limit", 0, "Page size (default chosen by the backend)")
	before := fs.Int64("before", 0, "latest: only videos created before this unix time")
	likesBefore := fs.Int64("likes-before", -1, "likes: cursor likes count from the previous page")
	idBefore := fs.Uint("id-before", 0, "likes: cursor video ID from the previous page")
	fs.Parse(args)

	switch *order {
	case "latest", "likes", "following":
	default:
		slog.Error("unknown feed order", "sort", *order)
		return 1
	}
	return withClient(load, "feed", func(ctx context.Context, c *apiclient.Client) error {
		svc := feed.NewService(c)
		var (
			page any
			err  error
		)
		switch *order {
		case "latest":
			page, err = svc.ListLatest(ctx, *limit, *before)
		case "likes":
			var cursor *feed.LikesCountCursor
			if *likesBefore >= 0 {
				cursor = &feed.LikesCountCursor{LikesCount: *likesBefore, ID: *idBefore}
			}
			page, err = svc.ListLikesCount(ctx, *limit, cursor)
		case "following":
			page, err = svc.ListByFollowing(ctx, *limit)
		}
		if err != nil {
			return err
		}
		printJSON(out, page)
		return nil
	})
}

// cmdLike runs like, unlike or liked for a video.
func cmdLike(name string, args []string, out io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	load := commonFlags(fs)
	fs.Parse(args)

	id, ok := idArg(fs, "video-id")
	if !ok {
		return 1
	}
	return withClient(load, name, func(ctx context.Context, c *apiclient.Client) error {
		svc := video.NewService(c)
		switch name {
		case "liked":
			liked, err := svc.IsLiked(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, liked)
			return nil
		case "unlike":
			msg, err := svc.Unlike(ctx, id)
			if err != nil {
				return err
			}
			slog.Info(msg, "video_id", id)
			return nil
		default:
			msg, err := svc.Like(ctx, id)
			if err != nil {
				return err
			}
			slog.Info(msg, "video_id", id)
			return nil
		}
	})
}

func cmdComments(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("comments", flag.ExitOnError)
	load := commonFlags(fs)
	fs.Parse(args)

	id, ok := idArg(fs, "video-id")
	if !ok {
		return 1
	}
	return withClient(load, "comments", func(ctx context.Context, c *apiclient.Client) error {
		comments, err := video.NewService(c).ListComments(ctx, id)
		if err != nil {
			return err
		}
		printJSON(out, comments)
		return nil
	})
}

func cmdComment(args []string) int {
	fs := flag.NewFlagSet("comment", flag.ExitOnError)
	load := commonFlags(fs)
	content := fs.String("content", "", "Comment text")
	fs.Parse(args)

	id, ok := idArg(fs, "video-id")
	if !ok {
		return 1
	}
	return withClient(load, "comment", func(ctx context.Context, c *apiclient.Client) error {
		msg, err := video.NewService(c).PublishComment(ctx, id, *content)
		if err != nil {
			return err
		}
		slog.Info(msg, "video_id", id)
		return nil
	})
}

func cmdUncomment(args []string) int {
	fs := flag.NewFlagSet("uncomment", flag.ExitOnError)
	load := commonFlags(fs)
	fs.Parse(args)

	id, ok := idArg(fs, "comment-id")
	if !ok {
		return 1
	}
	return withClient(load, "uncomment", func(ctx context.Context, c *apiclient.Client) error {
		msg, err := video.NewService(c).DeleteComment(ctx, id)
		if err != nil {
			return err
		}
		slog.Info(msg, "comment_id", id)
		return nil
	})
}

// cmdFollow runs follow or unfollow for an account.
func cmdFollow(name string, args []string) int {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	load := commonFlags(fs)
	fs.Parse(args)

	id, ok := idArg(fs, "account-id")
	if !ok {
		return 1
	}
	return withClient(load, name, func(ctx context.Context, c *apiclient.Client) error {
		svc := social.NewService(c)
		call := svc.Follow
		if name == "unfollow" {
			call = svc.Unfollow
		}
		msg, err := call(ctx, id)
		if err != nil {
			return err
		}
		slog.Info(msg, "account_id", id)
		return nil
	})
}

// cmdFollowList lists the followers of an account, or the accounts it
// follows. Without --account-id the signed-in account is used.
func cmdFollowList(name string, args []string, out io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	load := commonFlags(fs)
	id := fs.Uint("account-id", 0, "Account ID (default: the signed-in account)")
	fs.Parse(args)

	return withClient(load, name, func(ctx context.Context, c *apiclient.Client) error {
		svc := social.NewService(c)
		list := svc.Followers
		if name == "following" {
			list = svc.Vloggers
		}
		accounts, err := list(ctx, *id)
		if err != nil {
			return err
		}
		printJSON(out, accounts)
		return nil
	})
}

// cmdDecode prints the payload of a token given as an argument or on stdin.
func cmdDecode(args []string, in io.Reader, out io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	fs.Parse(args)

	var token string
	if fs.NArg() > 0 {
		token = fs.Arg(0)
	} else {
		token = promptLine(in, "")
	}
	payload, ok := auth.DecodePayload(strings.TrimSpace(token))
	if !ok {
		fmt.Fprintln(out, "cannot decode token payload")
		return 1
	}
	return printJSON(out, payload)
}

func printJSON(out io.Writer, v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("unable to encode output", "error", err)
		return 1
	}
	fmt.Fprintln(out, string(data))
	return 0
}

func promptLine(in io.Reader, prompt string) string {
	if prompt != "" {
		fmt.Fprint(os.Stderr, prompt)
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line)
}

func formatLocalDateTime(t time.Time) string {
	local := t.Local()
	tz := local.Format("MST")
	return fmt.Sprintf("%s %s", local.Format("Jan 02, 2006 15:04"), tz)
}

func formatDuration(d time.Duration) string {
	v := int(d.Seconds())
	if v < 0 {
		v = 0
	}
	days := v / 86400
	v %= 86400
	hours := v / 3600
	v %= 3600
	minutes := v / 60
	v %= 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 && v > 0 {
		parts = append(parts, "under 1m")
	}
	if len(parts) == 0 {
		parts = append(parts, "0m")
	}
	return strings.Join(parts, " ")
}
