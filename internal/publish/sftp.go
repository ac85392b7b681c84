package publish

import (
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strconv"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Uploader copies a staged binary to the distribution host.
type Uploader interface {
	Upload(localPath, remotePath string) error
}

type SFTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	KeyPath  string
}

// SFTPUploader dials a fresh SSH session per upload; publishing is rare
// enough that connection reuse is not worth the state.
type SFTPUploader struct {
	cfg SFTPConfig
}

func NewSFTPUploader(cfg SFTPConfig) *SFTPUploader {
	return &SFTPUploader{cfg: cfg}
}

func (u *SFTPUploader) Upload(localPath, remotePath string) error {
	var auths []ssh.AuthMethod
	if u.cfg.KeyPath != "" {
		keyData, err := os.ReadFile(u.cfg.KeyPath)
		if err != nil {
			return fmt.Errorf("sftp: read key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			return fmt.Errorf("sftp: parse key: %w", err)
		}
		auths = append(auths, ssh.PublicKeys(signer))
	}
	if u.cfg.Password != "" {
		auths = append(auths, ssh.Password(u.cfg.Password))
	}

	port := u.cfg.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(u.cfg.Host, strconv.Itoa(port))

	conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            u.cfg.User,
		Auth:            auths,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	if err != nil {
		return fmt.Errorf("sftp: dial %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return fmt.Errorf("sftp: session: %w", err)
	}
	defer client.Close()

	if err := client.MkdirAll(path.Dir(remotePath)); err != nil {
		return fmt.Errorf("sftp: mkdir: %w", err)
	}
	if err := put(client, localPath, remotePath); err != nil {
		return err
	}

	// keep a stable "app-last" alias next to the versioned file
	lastPath := path.Join(path.Dir(remotePath), "app-last"+path.Ext(remotePath))
	return put(client, localPath, lastPath)
}

func put(client *sftp.Client, localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("sftp: open local: %w", err)
	}
	defer src.Close()

	dst, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("sftp: create %s: %w", remotePath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("sftp: copy to %s: %w", remotePath, err)
	}
	return nil
}
