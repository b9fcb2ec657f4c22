package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gobmr/gobmr/db"
	"github.com/gobmr/gobmr/internal/bmr"
)

func main() {
	DebugCLI()
}

func DebugCLI() {
	var baseURL, username, password, command, durationStr, dbPath string
	var id int
	var temp float64
	var on bool

	flag.StringVar(&baseURL, "url", "", "Base URL of the HC64 controller")
	flag.StringVar(&username, "user", os.Getenv("BMR_USERNAME"), "Login name")
	flag.StringVar(&password, "pass", os.Getenv("BMR_PASSWORD"), "Password")
	flag.StringVar(&command, "cmd", "", "Command to run: status, circuit, override, remove-override, summer, low, schedule, ventilation, shutter, journal, list-overrides, clear-overrides")
	flag.IntVar(&id, "id", -1, "Circuit, schedule or shutter ID")
	flag.Float64Var(&temp, "temp", 0, "Temperature for override and low commands")
	flag.StringVar(&durationStr, "duration", "", "Override duration, e.g. 2h (empty = indefinite)")
	flag.BoolVar(&on, "on", false, "Switch value for summer and low commands")
	flag.StringVar(&dbPath, "db", "", "Path to the SQLite database file (journal and override persistence)")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help || command == "" {
		fmt.Println("\nUsage of gobmr-debug:")
		fmt.Println("  -url string\tBase URL of the HC64 controller")
		fmt.Println("  -user string\tLogin name (default $BMR_USERNAME)")
		fmt.Println("  -pass string\tPassword (default $BMR_PASSWORD)")
		fmt.Println("  -cmd string\tCommand to run: status, circuit, override, remove-override, summer, low, schedule, ventilation, shutter, journal, list-overrides, clear-overrides")
		fmt.Println("  -id int\tCircuit, schedule or shutter ID")
		fmt.Println("  -temp float\tTemperature for override and low commands")
		fmt.Println("  -duration string\tOverride duration, e.g. 2h (empty = indefinite)")
		fmt.Println("  -on\tSwitch value for summer and low commands")
		fmt.Println("  -db string\tPath to the SQLite database file")
		fmt.Println("  -help\tShow this help message")
		os.Exit(0)
	}

	// Journal commands only need the database.
	switch command {
	case "journal", "list-overrides", "clear-overrides":
		if dbPath == "" {
			fmt.Println("Error: -db is required")
			os.Exit(1)
		}
	}
	switch command {
	case "journal":
		exitOn(command, db.DumpJournalCLI(dbPath, 50))
		return
	case "list-overrides":
		exitOn(command, db.ListOverridesCLI(dbPath))
		return
	case "clear-overrides":
		exitOn(command, db.ClearOverridesCLI(dbPath))
		fmt.Printf("Command %s completed successfully\n", command)
		return
	}

	opts := bmr.Options{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
	}
	if dbPath != "" {
		database, err := db.Open(dbPath)
		if err != nil {
			fmt.Printf("Could not open database: %v\n", err)
			os.Exit(1)
		}
		defer database.Close()
		opts.Store = db.NewStore(database)
	}

	client, err := bmr.New(opts)
	if err != nil {
		fmt.Printf("Could not create client: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case "status":
		data, err := client.AllData()
		exitOn(command, err)
		printJSON(data)
	case "circuit":
		requireID(id)
		c, err := client.Circuit(id)
		exitOn(command, err)
		printJSON(c)
	case "override":
		requireID(id)
		var duration time.Duration
		if durationStr != "" {
			duration, err = time.ParseDuration(durationStr)
			if err != nil {
				fmt.Printf("Invalid duration %q: %v\n", durationStr, err)
				os.Exit(1)
			}
		}
		exitOn(command, client.SetTemperatureOverride(id, temp, duration))
		fmt.Printf("Command %s completed successfully\n", command)
	case "remove-override":
		requireID(id)
		exitOn(command, client.RemoveTemperatureOverride(id))
		fmt.Printf("Command %s completed successfully\n", command)
	case "summer":
		exitOn(command, client.SetSummerMode(on))
		fmt.Printf("Command %s completed successfully\n", command)
	case "low":
		var lowTemp *int
		if temp != 0 {
			v := int(temp)
			lowTemp = &v
		}
		exitOn(command, client.SetLowMode(on, lowTemp, nil, nil))
		fmt.Printf("Command %s completed successfully\n", command)
	case "schedule":
		requireID(id)
		s, err := client.Schedule(id)
		exitOn(command, err)
		printJSON(s)
	case "ventilation":
		v, err := client.Ventilation()
		exitOn(command, err)
		printJSON(v)
	case "shutter":
		requireID(id)
		s, err := client.Shutter(id)
		exitOn(command, err)
		printJSON(s)
	default:
		fmt.Println("Invalid command")
		os.Exit(1)
	}
}

func requireID(id int) {
	if id < 0 {
		fmt.Println("Error: -id is required")
		os.Exit(1)
	}
}

func exitOn(command string, err error) {
	if err != nil {
		fmt.Printf("Command %s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Could not render output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(b))
}
