package providers

var serviceDescriptors = map[string]Descriptor{
	"oura": {
		Service:     "oura",
		DisplayName: "Oura",
		Description: "Connect your Oura Ring for sleep, activity, and readiness insights",
		Category:    "Health and Wellness",
		IconName:    "activity",
	},
	"fitbit": {
		Service:     "fitbit",
		DisplayName: "Fitbit",
		Description: "Sync your Fitbit data for comprehensive health tracking",
		Category:    "Health and Wellness",
		IconName:    "activity",
	},
	"google_calendar": {
		Service:     "google_calendar",
		DisplayName: "Google Calendar",
		Description: "Access and manage your Google Calendar events",
		Category:    "Calendar",
		IconName:    "calendar",
	},
	"gmail": {
		Service:     "gmail",
		DisplayName: "Gmail",
		Description: "Send emails and access your Gmail inbox",
		Category:    "Email",
		IconName:    "mail",
	},
	"google_docs": {
		Service:     "google_docs",
		DisplayName: "Google Docs",
		Description: "Create and edit Google Documents",
		Category:    "Cloud Text Documents",
		IconName:    "file-text",
	},
	"google_sheets": {
		Service:     "google_sheets",
		DisplayName: "Google Sheets",
		Description: "Work with Google Spreadsheets",
		Category:    "Cloud Spreadsheets",
		IconName:    "sheet",
	},
	"google_meet": {
		Service:     "google_meet",
		DisplayName: "Google Meet",
		Description: "Create and manage Google Meet video calls",
		Category:    "Video Conferencing",
		IconName:    "video",
	},
	"microsoft_excel": {
		Service:     "microsoft_excel",
		DisplayName: "Microsoft Excel Online",
		Description: "Work with Excel spreadsheets in the cloud",
		Category:    "Cloud Spreadsheets",
		IconName:    "sheet",
	},
	"microsoft_word": {
		Service:     "microsoft_word",
		DisplayName: "Microsoft Word Online",
		Description: "Create and edit Word documents online",
		Category:    "Cloud Text Documents",
		IconName:    "file-text",
	},
	"microsoft_outlook_calendar": {
		Service:     "microsoft_outlook_calendar",
		DisplayName: "Microsoft Outlook Calendar",
		Description: "Manage your Outlook calendar events",
		Category:    "Calendar",
		IconName:    "calendar",
	},
	"microsoft_outlook_mail": {
		Service:     "microsoft_outlook_mail",
		DisplayName: "Microsoft Outlook Mail",
		Description: "Send emails and access your Outlook inbox",
		Category:    "Email",
		IconName:    "mail",
	},
	"microsoft_teams": {
		Service:     "microsoft_teams",
		DisplayName: "Microsoft Teams",
		Description: "Collaborate with your Teams workspace",
		Category:    "Team Collaboration",
		IconName:    "users",
	},
	"slack": {
		Service:     "slack",
		DisplayName: "Slack",
		Description: "Send messages and interact with your Slack workspace",
		Category:    "Team Collaboration",
		IconName:    "message-square",
	},
	"notion": {
		Service:     "notion",
		DisplayName: "Notion",
		Description: "Access your Notion workspace and pages",
		Category:    "Task Management",
		IconName:    "book",
	},
	"todoist": {
		Service:     "todoist",
		DisplayName: "Todoist",
		Description: "Manage your Todoist tasks and projects",
		Category:    "Task Management",
		IconName:    "check-square",
	},
	"mychart": {
		Service:     "mychart",
		DisplayName: "MyChart",
		Description: "Access your Epic MyChart health records and medical data",
		Category:    "Health and Wellness",
		IconName:    "activity",
	},
}
