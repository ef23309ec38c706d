// Package main implements an OCR-driven quest automation bot.
//
// Architecture Overview:
// The bot runs a single polling loop over a capture-OCR-classify-act pipeline,
// with a small number of supporting goroutines. The main concurrent components:
//
//   1. Main Loop Goroutine: Executes at configurable intervals (default 1s),
//      captures the dialogue region, runs OCR and state classification, and
//      drives the active behavior (Quest/Combat/Trade).
//
//   2. Whisper Monitor Goroutine: Polls the chat region at its own interval
//      and pushes extracted whispers into a buffered channel drained by the
//      main loop.
//
//   3. System Tray Goroutines: Mode switching, capture frequency and quit
//      handlers over systray menu channels.
//
//   4. Hotkey Goroutine: Global F8 pause / F10 quit listener.
//
// Main Loop Logic:
// Each iteration performs the following steps in sequence:
//   1. Skip when paused (F8)
//   2. Detect: capture dialogue region, OCR, classify against the registry
//   3. Dispatch the classified state's handler (deduplicated by the dispatcher)
//   4. Run the active behavior with the detection result
//   5. Drain pending whisper events (count, log, forward to Discord)
//   6. Update the system tray status line
//
// Key Design Decisions:
//   - Capture or OCR failure skips the iteration, never crashes the loop
//   - Mode switches build a fresh dispatcher so handlers never stack
//   - Configuration changes are immediately saved to data/config.json
//   - Graceful shutdown with signal handling (SIGINT/SIGTERM)
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/getlantern/systray"
	cli "github.com/spf13/cobra"
	"github.com/vcaesar/imgo"
)

// BotBehavior defines the interface that all bot behaviors must implement.
//
// The interface provides a common contract for different behavior modes,
// allowing the bot to switch between behaviors dynamically at runtime.
//
// Methods:
//   - Attach: Register the behavior's dialogue handlers on a fresh dispatcher
//   - Run: Execute one iteration with the current detection result
//   - Stop: Gracefully terminate and clean up behavior state
//   - GetState: Return the current state name for the tray status line
type BotBehavior interface {
	Attach(dispatcher *ActionDispatcher, registry *PatternRegistry, input *InputController, config *Config, stats *SessionStats)
	Run(rec *DetectedDialogue, dispatched bool, detector *DialogueDetector, input *InputController, config *Config, stats *SessionStats) error
	Stop()
	GetState() string
}

// repeatSuppression is the dispatcher's same-state dedup window. A dialogue
// that stays on screen across iterations dispatches once, not once per frame.
const repeatSuppression = 5 * time.Second

// Bot represents the main bot controller and orchestrates all subsystems.
//
// Component Dependencies:
//   - config: Thread-safe configuration (RWMutex protected)
//   - stats: Session counters (detections, dispatches, kills, loot, whispers)
//   - capturer: OS-level screen capture
//   - reader: Tesseract OCR wrapper
//   - registry: State pattern registry (phrases/regexes -> canned responses)
//   - detector: Capture + OCR + classify pipeline
//   - dispatcher: State -> handler routing with repeat suppression
//   - input: Keyboard/mouse synthesis with pacing and click jitter
//   - whispers: Background chat region monitor
//   - lockouts/loot/prices: Flat-file bookkeeping services
//   - notifier: Optional Discord webhook
//   - behavior: Current active behavior (Quest/Combat/Trade), nil when stopped
type Bot struct {
	config   *Config
	stats    *SessionStats
	capturer ScreenCapturer
	reader   *TesseractReader
	registry *PatternRegistry
	detector *DialogueDetector
	input    *InputController
	whispers *WhisperMonitor
	lockouts *LockoutTracker
	loot     *LootLogger
	prices   *PriceCache
	notifier *DiscordNotifier
	anchor   *TemplateAnchor
	tray     *TrayApp
	hotkeys  *HotkeyListener
	data     *PersistentData
	dataPath string

	// behavior and dispatcher are replaced together on every mode change;
	// mu guards them against concurrent tray/hotkey/main-loop access.
	behavior   BotBehavior
	dispatcher *ActionDispatcher
	mu         sync.Mutex

	paused   bool
	stopChan chan bool
	stopOnce sync.Once
}

// NewBot creates and initializes a new bot instance with all required components.
//
// Initialization Process:
//   1. Load persistent configuration from the config path
//   2. Open the primary display capturer
//   3. Start a Tesseract OCR client with the configured language/whitelist
//   4. Build the pattern registry (defaults + optional patterns file)
//   5. Load the template anchor set when anchoring is enabled
//   6. Create the detector, input controller, whisper monitor and the
//      flat-file services (lockouts, loot, prices)
//
// Notes:
//   - If the config file doesn't exist or is corrupted, defaults are used
//   - A missing template directory disables anchoring but is not fatal
func NewBot(configPath string) (*Bot, error) {
	LogInfo("Initializing bot components...")

	data, err := LoadData(configPath)
	if err != nil {
		LogError("Failed to load data: %v, using defaults", err)
		data = NewPersistentData()
	}
	config := data.Config
	LogDebug("Config loaded")

	capturer, err := NewDisplayCapturer(0)
	if err != nil {
		return nil, fmt.Errorf("open display: %w", err)
	}
	LogDebug("Display capturer created")

	reader, err := NewTesseractReader(config.OCRLanguage, config.OCRWhitelist)
	if err != nil {
		return nil, fmt.Errorf("start OCR client: %w", err)
	}
	LogDebug("OCR client created")

	registry := NewDefaultRegistry(config.MinMatchRatio)
	patternsPath := filepath.Join(dataDir, "patterns.json")
	if _, statErr := os.Stat(patternsPath); statErr == nil {
		if loadErr := registry.LoadPatternsFile(patternsPath); loadErr != nil {
			LogWarn("Failed to load %s: %v", patternsPath, loadErr)
		}
	}
	LogDebug("Pattern registry created with %d states", len(registry.States()))

	detector := NewDialogueDetector(capturer, reader, registry, config.DialogueRegion)

	var anchor *TemplateAnchor
	if config.UseTemplateAnchor {
		anchor, err = NewTemplateAnchor(config.TemplateDir, config.TemplateThreshold)
		if err != nil {
			LogWarn("Template anchoring disabled: %v", err)
		} else if anchor.Has(AnchorTemplate) {
			detector.SetAnchor(anchor, AnchorTemplate)
			LogInfo("Template anchoring enabled")
		} else {
			LogWarn("Template %q not found in %s, anchoring disabled", AnchorTemplate, config.TemplateDir)
		}
	}

	whisperInterval := time.Duration(config.WhisperInterval) * time.Millisecond
	whispers := NewWhisperMonitor(capturer, reader, config.ChatRegion, whisperInterval)

	bot := &Bot{
		config:   config,
		stats:    NewSessionStats(),
		capturer: capturer,
		reader:   reader,
		registry: registry,
		detector: detector,
		input:    NewInputController(),
		whispers: whispers,
		lockouts: NewLockoutTracker(DefaultLockoutPath()),
		loot:     NewLootLogger(logDir),
		prices:   NewPriceCache(DefaultPricePath(), time.Duration(config.PriceTTLHours)*time.Hour),
		notifier: NewDiscordNotifier(config.DiscordWebhookURL),
		anchor:   anchor,
		data:     data,
		dataPath: configPath,
		stopChan: make(chan bool),
	}

	bot.tray = NewTrayApp(bot)
	bot.hotkeys = NewHotkeyListener(bot)
	LogInfo("Bot components initialized successfully")

	return bot, nil
}

// StartMainLoop starts the whisper monitor, hotkeys and the main loop.
// Called from the tray's onReady so the UI is responsive before the first
// capture.
func (b *Bot) StartMainLoop() {
	b.whispers.Start()
	b.hotkeys.Start()

	// Set initial mode from config
	b.ChangeMode(b.config.GetMode())

	LogInfo("Starting main loop")
	SafeGo(func() {
		b.mainLoop()
	})
}

// ChangeMode switches the bot's operational mode.
//
// Supported Modes:
//   - "Stop": Disables all bot actions, only detection continues
//   - "Quest": Dialogue progression with loot and lockout bookkeeping
//   - "Combat": Attack key rotation against the current target
//   - "Trade": Vendor screen scraping and configured buying
//
// Every switch builds a fresh dispatcher: canned responses are bound from
// the registry, then the behavior attaches its own handlers on top. Reusing
// the dispatcher across switches would stack wrapped handlers.
func (b *Bot) ChangeMode(mode string) {
	LogInfo("Changing mode to: %s", mode)
	b.config.SetMode(mode)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.behavior != nil {
		b.behavior.Stop()
	}

	dispatcher := NewActionDispatcher(repeatSuppression)
	dispatcher.BindResponses(b.registry, b.input)

	switch mode {
	case "Stop":
		b.behavior = nil
		b.dispatcher = nil
		LogInfo("Bot stopped, detection continues")
		return
	case "Quest":
		b.behavior = NewQuestBehavior(b.lockouts, b.loot, b.notifier)
		LogInfo("Quest behavior activated")
	case "Combat":
		b.behavior = NewCombatBehavior()
		LogInfo("Combat behavior activated")
	case "Trade":
		b.behavior = NewTradeBehavior(b.prices)
		LogInfo("Trade behavior activated")
	default:
		LogWarn("Unknown mode %q, stopping", mode)
		b.behavior = nil
		b.dispatcher = nil
		return
	}

	b.behavior.Attach(dispatcher, b.registry, b.input, b.config, b.stats)
	b.dispatcher = dispatcher
}

// TogglePause flips the pause flag and returns the new value. Paused means
// the loop keeps running but skips iterations entirely.
func (b *Bot) TogglePause() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paused = !b.paused
	return b.paused
}

// isPaused reads the pause flag under the lock.
func (b *Bot) isPaused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// StopBehavior stops the current behavior and signals the main loop to exit.
// Safe to call multiple times, never blocks.
func (b *Bot) StopBehavior() {
	LogInfo("Stopping behavior")
	b.mu.Lock()
	if b.behavior != nil {
		b.behavior.Stop()
		b.behavior = nil
	}
	b.mu.Unlock()

	select {
	case b.stopChan <- true:
		LogDebug("Stop signal sent to main loop")
	default:
		LogDebug("Main loop already stopped or not listening")
	}
}

// mainLoop is the core execution loop that runs continuously until stopped.
//
// Timing Modes:
//   - CaptureInterval = 0: Continuous execution (no sleep between iterations)
//   - CaptureInterval > 0: Waits for specified milliseconds between iterations
//
// Uses 50ms sleep intervals when waiting to avoid busy-waiting.
func (b *Bot) mainLoop() {
	LogInfo("Main loop started")

	lastCaptureTime := time.Now()

	for {
		select {
		case <-b.stopChan:
			LogInfo("Stop signal received")
			return
		default:
			captureInterval := b.config.GetCaptureInterval()

			now := time.Now()
			timeSinceCapture := now.Sub(lastCaptureTime)

			if captureInterval == 0 || timeSinceCapture >= time.Duration(captureInterval)*time.Millisecond {
				b.runIteration()
				lastCaptureTime = now
			} else {
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

// runIteration executes a single cycle of the bot's operation pipeline.
//
// Execution Pipeline:
//   1. Skip entirely while paused
//   2. Detect the current dialogue state (capture + OCR + classify)
//   3. Dispatch the state's handler; the dispatcher suppresses repeats of
//      the same state within its dedup window
//   4. Run the active behavior with the detection result
//   5. Drain pending whisper events
//   6. Update the tray status line
//
// Error Handling:
// All errors are logged but do not stop execution. The bot continues
// operating even if individual steps fail.
func (b *Bot) runIteration() {
	if b.isPaused() {
		return
	}

	timer := NewTimer("main_loop")
	defer timer.Log()

	rec, err := b.detector.Detect()
	if err != nil {
		LogError("Detection failed: %v", err)
		return
	}

	b.mu.Lock()
	behavior := b.behavior
	dispatcher := b.dispatcher
	b.mu.Unlock()

	dispatched := false
	if rec != nil && rec.State != "" {
		b.stats.AddDetection(rec.State)
		if dispatcher != nil {
			dispatched, err = dispatcher.Dispatch(rec)
			if err != nil {
				LogError("Handler for %q failed: %v", rec.State, err)
			}
			if dispatched {
				b.stats.AddDispatch()
			}
		}
	} else if dispatcher != nil {
		// No dialogue on screen: the next appearance of any state is fresh.
		dispatcher.ClearLast()
	}

	mode := b.config.GetMode()
	behaviorState := ""
	if behavior != nil && mode != "Stop" {
		if err := behavior.Run(rec, dispatched, b.detector, b.input, b.config, b.stats); err != nil {
			LogError("Behavior error: %v", err)
		}
		behaviorState = behavior.GetState()
	}

	b.drainWhispers()

	if b.tray != nil {
		b.tray.UpdateStatus(mode, behaviorState)
	}
}

// drainWhispers consumes all whisper events queued since the last iteration.
func (b *Bot) drainWhispers() {
	for {
		select {
		case ev := <-b.whispers.Events():
			b.stats.AddWhisper()
			LogInfo("Whisper from %s: %s", ev.Sender, ev.Message)
			b.notifier.NotifyWhisper(ev)
		default:
			return
		}
	}
}

// SaveState persists the configuration and the flat-file services.
//
// Called on configuration changes via the tray, on graceful shutdown, and
// after lockout recordings. Individual save failures are logged and do not
// prevent the remaining saves.
func (b *Bot) SaveState() {
	LogInfo("Saving bot state...")

	if err := SaveData(b.dataPath, b.data); err != nil {
		LogError("Failed to save config: %v", err)
	}
	if err := b.lockouts.Save(); err != nil {
		LogError("Failed to save lockouts: %v", err)
	}
	if err := b.prices.Save(); err != nil {
		LogError("Failed to save prices: %v", err)
	}
	LogInfo("Bot state saved")
}

// Shutdown performs the full graceful shutdown sequence and exits.
// Safe to call from any goroutine (tray quit, hotkey, signal handler).
func (b *Bot) Shutdown() {
	b.stopOnce.Do(func() {
		LogInfo("Shutting down...")
		b.StopBehavior()
		b.whispers.Stop()
		b.hotkeys.Stop()
		b.SaveState()
		b.notifier.NotifySummary(b.stats)

		if summary, err := b.stats.ExportSummary(); err == nil {
			LogInfo("Session summary: %s", string(summary))
		}

		if b.reader != nil {
			b.reader.Close()
		}
		if b.anchor != nil {
			b.anchor.Close()
		}
		CloseLogger()
		systray.Quit()
		os.Exit(0)
	})
}

// Run starts the bot application and blocks until shutdown.
//
// Execution Flow:
//   1. Install OS signal handlers for SIGINT/SIGTERM
//   2. Start system tray UI (blocking; onReady starts the main loop)
func (b *Bot) Run() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		LogInfo("Signal received: %v, shutting down gracefully...", sig)
		b.Shutdown()
	}()

	LogInfo("Starting system tray (main loop starts when tray is ready)...")
	b.tray.Run()
	LogInfo("System tray exited")

	b.SaveState()
}

var (
	flagMode   string
	flagConfig string
	flagDebug  bool

	rootCmd = &cli.Command{
		Use:   "quest-bot",
		Short: "OCR-driven quest automation",
		Long: "quest-bot watches a game window through OS screenshots, reads dialogue\n" +
			"text with Tesseract OCR, classifies UI states against a pattern registry\n" +
			"and answers them with canned keyboard/mouse responses.",
		RunE: runBot,
	}

	snapshotCmd = &cli.Command{
		Use:   "snapshot",
		Short: "Capture the dialogue region once and print the OCR result",
		Long: "Captures the configured dialogue region, saves the raw and preprocessed\n" +
			"frames under logs/frames/, prints the OCR text and the matched state.\n" +
			"Useful for calibrating regions and patterns without running the bot.",
		RunE: runSnapshot,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", DefaultConfigPath(), "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging and frame dumps")
	rootCmd.Flags().StringVar(&flagMode, "mode", "", "initial mode (Stop, Quest, Combat, Trade)")
	rootCmd.AddCommand(snapshotCmd)
}

// runBot is the root command: full bot with tray, hotkeys and main loop.
func runBot(cmd *cli.Command, args []string) error {
	banner()

	bot, err := NewBot(flagConfig)
	if err != nil {
		return err
	}
	if flagMode != "" {
		bot.config.SetMode(flagMode)
	}

	LogInfo("Bot instance created, starting main run...")
	bot.Run()
	return nil
}

// runSnapshot captures the dialogue region once for offline calibration.
//
// Output:
//   - logs/frames/snapshot_raw.png: the captured region as-is
//   - logs/frames/snapshot_ocr.png: after grayscale/contrast/upscale
//   - stdout: OCR text, matched state (if any) and extracted options
func runSnapshot(cmd *cli.Command, args []string) error {
	data, err := LoadData(flagConfig)
	if err != nil {
		LogWarn("Failed to load config: %v, using defaults", err)
		data = NewPersistentData()
	}
	config := data.Config

	capturer, err := NewDisplayCapturer(0)
	if err != nil {
		return fmt.Errorf("open display: %w", err)
	}

	img, err := capturer.CaptureRegion(config.DialogueRegion.Rect())
	if err != nil {
		return fmt.Errorf("capture dialogue region: %w", err)
	}

	frameDir := filepath.Join(logDir, "frames")
	if err := os.MkdirAll(frameDir, 0755); err != nil {
		return fmt.Errorf("create frame directory: %w", err)
	}
	if err := imgo.Save(filepath.Join(frameDir, "snapshot_raw.png"), img); err != nil {
		return fmt.Errorf("save raw frame: %w", err)
	}

	processed := PreprocessForOCR(img)
	if err := imgo.Save(filepath.Join(frameDir, "snapshot_ocr.png"), processed); err != nil {
		return fmt.Errorf("save preprocessed frame: %w", err)
	}
	fmt.Printf("Frames saved under %s\n", frameDir)

	reader, err := NewTesseractReader(config.OCRLanguage, config.OCRWhitelist)
	if err != nil {
		return fmt.Errorf("start OCR client: %w", err)
	}
	defer reader.Close()

	// ReadText runs the same preprocessing internally; feed it the raw frame.
	text, err := reader.ReadText(img)
	if err != nil {
		return fmt.Errorf("OCR: %w", err)
	}

	fmt.Println("--- OCR text ---")
	fmt.Println(text)

	registry := NewDefaultRegistry(config.MinMatchRatio)
	if pattern, confidence, ok := registry.Match(text); ok {
		color.Green("Matched state: %s (confidence %.2f)", pattern.Name, confidence)
	} else {
		color.Yellow("No state matched")
	}

	for _, opt := range ExtractOptions(text) {
		fmt.Printf("  option %d: %s\n", opt.Number, opt.Text)
	}
	return nil
}

// banner prints the startup banner.
func banner() {
	color.Cyan("quest-bot")
	bold := color.New(color.Bold).Add(color.FgGreen)
	bold.Println("OCR quest automation | F8 pause | F10 quit")
}

// main is the application entry point.
//
// Exit Codes:
//   - 0: Normal exit (user quit)
//   - 1: Logger initialization or startup failure
//   - 2: Unhandled panic occurred
func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			LogError("PANIC in main: %v", r)
			CloseLogger()
			os.Exit(2)
		}
	}()

	// Flags are parsed by cobra later; peek for --debug so the logger level
	// is right from the first line.
	debug := false
	for _, arg := range os.Args[1:] {
		if arg == "--debug" {
			debug = true
		}
	}

	if err := InitLogger(debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		LogInfo("=== Quest Bot Shutdown ===")
		CloseLogger()
	}()

	LogInfo("=== Quest Bot Started ===")

	if err := rootCmd.Execute(); err != nil {
		LogError("Startup failed: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
