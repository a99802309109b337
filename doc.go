/*
Package monday-app-drive archives monday.com boards to a Google Drive folder as CSV files.

monday-app-drive can be used from the command line but is really intended to be run from a cron job to keep
an offline copy of the boards on a monday.com account in a shared Google Drive folder.

monday-app-drive supports the following commands:

  - authorise, to authorise application access to a Google Drive folder
  - backup, to export all boards on the account and archive them to the Google Drive folder
  - export, to export a single board to a local CSV file
  - upload, to store a local CSV file to the Google Drive folder
  - version, to display the application version
*/
package backup
