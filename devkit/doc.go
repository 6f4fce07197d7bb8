// Package devkit provides scripted test doubles for the account accessor's
// external collaborators: the HTTP transport and the mailing-list service.
package devkit
