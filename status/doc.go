// Package status holds lock-free metric cells shared between the render loops and their readers.
package status
