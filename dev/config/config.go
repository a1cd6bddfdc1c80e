package config

// SERVER_YML is written to dev/config/server.yml the first time the server runs in dev mode
const SERVER_YML = `
swiftly:
  auditLogPath:
  cron:
    timeZone: "Africa/Johannesburg"
  listener:
    port: 3000
  dispatch:
    maxConcurrency: 1

twilio:
  accountSid: ACdev
  authToken: dev
  from: "+14155238886"
  channel: whatsapp

google:
  storage:
    bucket: "swiftly"
    prefix: "swiftly-dev"
    auditLogBackupSchedule: "*/30 * * * *"
    enableAuditLogBackup: false
  applicationCredentials:
`

// DEFAULT_CLIENT_YML is the default content for .swiftly.yaml
const DEFAULT_CLIENT_YML = `server:
  url: "http://localhost:3000"

# Where your profile & emergency contacts are kept.
# Defaults to user_data.txt next to this file.
profile:
  path:

# Your position as "lat,lon", used when the device has no location service.
# e.g.
# location:
#   coordinates: "-33.9249,18.4241"
#
location:
  coordinates:

sos:
  emergencyType: "Send an ambulance"
  countdown: 5
`
