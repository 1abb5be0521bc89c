// Package version holds build metadata, overridable with -ldflags "-X".
package version

var (
	AppName        = "Turo"
	AppVersion     = "1.2.3"
	AppDescription = "Locks Pokétwo out of a channel after a hunt ping so the pinged hunters get the first shot."
)

// Presence is the custom status shown by the bot.
func Presence() string {
	return AppName + "v" + AppVersion
}
